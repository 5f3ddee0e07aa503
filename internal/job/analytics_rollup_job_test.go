package job

import (
	"Lumen/internal/pkg/consts"
	"Lumen/internal/pkg/redis"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRollup struct {
	mu        sync.Mutex
	refreshed []uint64
	fail      map[uint64]bool
}

func (f *fakeRollup) RefreshRollup(_ context.Context, contentID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[contentID] {
		return errors.New("boom")
	}
	f.refreshed = append(f.refreshed, contentID)
	return nil
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redis.SetClient(client)
	return mr
}

func TestAnalyticsRollupJob_ProcessesDirtySet(t *testing.T) {
	mr := setupRedis(t)
	_, err := mr.SAdd(consts.AnalyticsDirtyKey, "1", "2", "3")
	require.NoError(t, err)

	svc := &fakeRollup{fail: map[uint64]bool{2: true}}
	done, err := NewAnalyticsRollupJob(svc).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, done)

	sort.Slice(svc.refreshed, func(i, j int) bool { return svc.refreshed[i] < svc.refreshed[j] })
	assert.Equal(t, []uint64{1, 3}, svc.refreshed)

	// 失败的内容放回脏集合，processing 集合已清理
	members, err := mr.Members(consts.AnalyticsDirtyKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, members)
	assert.False(t, mr.Exists(consts.AnalyticsDirtyKey+":processing"))
}

func TestAnalyticsRollupJob_EmptyAndLeftover(t *testing.T) {
	mr := setupRedis(t)
	svc := &fakeRollup{}
	job := NewAnalyticsRollupJob(svc)

	done, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, done)

	_, err = mr.SAdd(consts.AnalyticsDirtyKey+":processing", "5")
	require.NoError(t, err)
	_, err = mr.SAdd(consts.AnalyticsDirtyKey, "6")
	require.NoError(t, err)

	done, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, done)
	assert.False(t, mr.Exists(consts.AnalyticsDirtyKey))
	assert.False(t, mr.Exists(consts.AnalyticsDirtyKey+":processing"))
}
