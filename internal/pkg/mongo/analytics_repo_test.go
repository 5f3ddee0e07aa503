package mongo

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/repository"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestDatabase 需要真实 MongoDB，未设置 LUMEN_TEST_MONGO_URI 时跳过
func newTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("LUMEN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LUMEN_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("lumen_test_%d", time.Now().UnixNano()))
	require.NoError(t, EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func ptr(v uint64) *uint64 { return &v }

func TestMongoAnalyticsRepo_AppendAndRecompute(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewAnalyticsRepo(db)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 1, 10)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, ViewerID: ptr(5), DeviceType: "mobile", Location: "US", Duration: 20, ViewedAt: now}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, ViewerID: ptr(5), DeviceType: "mobile", Location: "US", ViewedAt: now}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, DeviceType: "web", Location: "DE", ViewedAt: now}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, ViewerID: ptr(6), DeviceType: "web", Location: "DE", Duration: 40, ViewedAt: now}))
	require.NoError(t, repo.AppendEngagement(ctx, &model.EngagementEvent{ContentID: 1, Type: consts.EngagementLike, ViewerID: 5, CreatedAt: now}))

	record, err := repo.FindOne(ctx, 1, true)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(4), record.TotalViews)
	assert.Equal(t, int64(2), record.UniqueViews)
	assert.Equal(t, int64(1), record.TotalLikes)
	assert.InDelta(t, 25.0, record.EngagementRate, 1e-9)
	assert.InDelta(t, 30.0, record.AverageViewDuration, 1e-9)
	assert.Len(t, record.Views, 4)
	assert.Len(t, record.Engagements, 1)
	assert.Nil(t, record.Views[2].ViewerID)

	err = repo.AppendEngagement(ctx, &model.EngagementEvent{ContentID: 1, Type: "bookmark", CreatedAt: now})
	assert.ErrorIs(t, err, repository.ErrUnknownEngagementType)
	err = repo.AppendView(ctx, &model.ViewEvent{ContentID: 404, ViewedAt: now})
	assert.ErrorIs(t, err, repository.ErrAnalyticsMissing)
}

func TestMongoAnalyticsRepo_ConcurrentFirstEvents(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewAnalyticsRepo(db)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.GetOrCreate(ctx, 3, 30)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 3, ViewerID: ptr(uint64(i)), DeviceType: "web", Location: "US", ViewedAt: time.Now().UTC()}))
		}(i)
	}
	wg.Wait()

	count, err := db.Collection(analyticsCollection).CountDocuments(ctx, map[string]interface{}{"content_id": 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, err := repo.FindOne(ctx, 3, false)
	require.NoError(t, err)
	assert.Equal(t, int64(n), record.TotalViews)
	assert.Equal(t, int64(n), record.UniqueViews)
	assert.Empty(t, record.Views)
}

func TestMongoAnalyticsRepo_FindByCreatorAndViewTimes(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewAnalyticsRepo(db)
	ctx := context.Background()

	for _, id := range []uint64{1, 2} {
		_, err := repo.GetOrCreate(ctx, id, 10)
		require.NoError(t, err)
	}
	_, err := repo.GetOrCreate(ctx, 3, 11)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 2, DeviceType: "web", Location: "US", ViewedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, DeviceType: "web", Location: "US", ViewedAt: now}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 3, DeviceType: "web", Location: "US", ViewedAt: now}))

	records, err := repo.FindByCreator(ctx, &repository.AnalyticsQuery{CreatorID: 10})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	start, end := now.Add(-2*time.Hour), now.Add(time.Minute)
	times, err := repo.ListViewTimes(ctx, 10, start, end)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Before(times[1]))

	demo := model.Demographics{AgeRanges: map[string]int64{"18-24": 1}, Genders: map[string]int64{}, TopCountries: []model.CountryCount{{Country: "US", Count: 1}}}
	require.NoError(t, repo.SaveRollup(ctx, 1, demo, model.TimeStats{}))
	record, err := repo.FindOne(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Demographics.AgeRanges["18-24"])

	views, err := repo.ListViews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestMongoAnalyticsRepo_CountEvents(t *testing.T) {
	db := newTestDatabase(t)
	repo := NewAnalyticsRepo(db)
	ctx := context.Background()
	_, err := repo.GetOrCreate(ctx, 1, 10)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, 2, 11)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	old := now.AddDate(0, 0, -60)
	for _, ts := range []time.Time{old, old.Add(time.Minute), now.Add(-time.Hour)} {
		require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 1, DeviceType: "web", Location: "US", ViewedAt: ts}))
	}
	require.NoError(t, repo.AppendEngagement(ctx, &model.EngagementEvent{ContentID: 1, Type: consts.EngagementLike, ViewerID: 1, CreatedAt: old}))
	require.NoError(t, repo.AppendEngagement(ctx, &model.EngagementEvent{ContentID: 1, Type: consts.EngagementShare, ViewerID: 1, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.AppendView(ctx, &model.ViewEvent{ContentID: 2, DeviceType: "web", Location: "US", ViewedAt: now}))

	start, end := now.AddDate(0, 0, -30), now.Add(time.Minute)
	counts, err := repo.CountEvents(ctx, &repository.AnalyticsQuery{CreatorID: 10, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, repository.WindowCounts{Views: 1, Shares: 1}, *counts[1])

	all, err := repo.CountEvents(ctx, &repository.AnalyticsQuery{CreatorID: 10})
	require.NoError(t, err)
	assert.Equal(t, repository.WindowCounts{Views: 3, Likes: 1, Shares: 1}, *all[1])
}
