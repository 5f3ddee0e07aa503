package mongo

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const analyticsCollection = "content_analytics"

var engagementFields = map[string]string{
	consts.EngagementLike:    "metrics.total_likes",
	consts.EngagementComment: "metrics.total_comments",
	consts.EngagementShare:   "metrics.total_shares",
}

// 事件数组与去重集合只在单条查询时返回
var summaryProjection = bson.D{
	{Key: "views", Value: 0},
	{Key: "engagements", Value: 0},
	{Key: "viewer_ids", Value: 0},
}

type analyticsRepoImpl struct {
	col *mongo.Collection
}

// NewAnalyticsRepo 基于文档存储的分析记录仓库
func NewAnalyticsRepo(db *mongo.Database) repository.AnalyticsRepo {
	return &analyticsRepoImpl{
		col: db.Collection(analyticsCollection),
	}
}

// EnsureIndexes content_id 唯一索引保证每个内容只有一条文档
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(analyticsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "content_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_content_id"),
		},
		{
			Keys:    bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_creator_created"),
		},
	})
	return err
}

func (s *analyticsRepoImpl) GetOrCreate(ctx context.Context, contentID, creatorID uint64) (*model.ContentAnalytics, error) {
	now := time.Now().UTC()
	filter := bson.M{"content_id": contentID}
	update := bson.M{"$setOnInsert": bson.M{
		"content_id": contentID,
		"creator_id": creatorID,
		"metrics":    MetricsDoc{},
		"demographics": DemographicsDoc{
			AgeRanges:    map[string]int64{},
			Genders:      map[string]int64{},
			TopCountries: []model.CountryCount{},
		},
		"time_stats": TimeStatsDoc{
			PeakHours:    []model.HourViews{},
			WeekdayStats: []model.WeekdayViews{},
		},
		"views":         bson.A{},
		"engagements":   bson.A{},
		"viewer_ids":    bson.A{},
		"last_event_at": repository.NoEventTime,
		"created_at":    now,
		"updated_at":    now,
	}}

	_, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	// 并发 upsert 时唯一索引会拒绝其中之一，此时文档已由另一方创建
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, err
	}

	doc, err := s.findDoc(ctx, contentID, summaryProjection)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, repository.ErrAnalyticsMissing
	}
	return doc.toModel(), nil
}

func (s *analyticsRepoImpl) FindOne(ctx context.Context, contentID uint64, withEvents bool) (*model.ContentAnalytics, error) {
	var projection interface{}
	if withEvents {
		projection = bson.D{{Key: "viewer_ids", Value: 0}}
	} else {
		projection = summaryProjection
	}
	doc, err := s.findDoc(ctx, contentID, projection)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *analyticsRepoImpl) findDoc(ctx context.Context, contentID uint64, projection interface{}) (*AnalyticsDoc, error) {
	var doc AnalyticsDoc
	err := s.col.FindOne(ctx, bson.M{"content_id": contentID}, options.FindOne().SetProjection(projection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (s *analyticsRepoImpl) FindByCreator(ctx context.Context, q *repository.AnalyticsQuery) ([]*model.ContentAnalytics, error) {
	filter := bson.M{"creator_id": q.CreatorID}
	if q.ContentID != 0 {
		filter["content_id"] = q.ContentID
	}
	if q.End != nil {
		filter["created_at"] = bson.M{"$lte": *q.End}
	}
	if q.Start != nil {
		filter["last_event_at"] = bson.M{"$gte": *q.Start}
	}

	findOptions := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{
			{Key: "created_at", Value: -1},
			{Key: "content_id", Value: -1},
		})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	docs := make([]*AnalyticsDoc, 0)
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]*model.ContentAnalytics, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toModel())
	}
	return records, nil
}

// AppendView 单条管道更新：追加事件、并入观众集合、累加计数并重算派生指标
func (s *analyticsRepoImpl) AppendView(ctx context.Context, view *model.ViewEvent) error {
	appendStage := bson.D{
		{Key: "views", Value: concatOne("$views", newViewDoc(view))},
		{Key: "metrics.total_views", Value: bson.M{"$add": bson.A{"$metrics.total_views", 1}}},
		{Key: "last_event_at", Value: bson.M{"$max": bson.A{"$last_event_at", view.ViewedAt}}},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	if view.ViewerID != nil {
		appendStage = append(appendStage, bson.E{
			Key:   "viewer_ids",
			Value: bson.M{"$setUnion": bson.A{bson.M{"$ifNull": bson.A{"$viewer_ids", bson.A{}}}, bson.A{*view.ViewerID}}},
		})
	}
	if view.Duration > 0 {
		appendStage = append(appendStage,
			bson.E{Key: "metrics.total_view_duration", Value: bson.M{"$add": bson.A{"$metrics.total_view_duration", view.Duration}}},
			bson.E{Key: "metrics.timed_views", Value: bson.M{"$add": bson.A{"$metrics.timed_views", 1}}},
		)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: appendStage}},
		{{Key: "$set", Value: bson.D{
			{Key: "metrics.unique_views", Value: bson.M{"$size": bson.M{"$ifNull": bson.A{"$viewer_ids", bson.A{}}}}},
			{Key: "metrics.engagement_rate", Value: engagementRateExpr()},
			{Key: "metrics.average_view_duration", Value: averageDurationExpr()},
		}}},
	}
	return s.apply(ctx, view.ContentID, pipeline)
}

// AppendEngagement 单条管道更新：追加互动、累加对应计数并重算互动率
func (s *analyticsRepoImpl) AppendEngagement(ctx context.Context, engagement *model.EngagementEvent) error {
	field, ok := engagementFields[engagement.Type]
	if !ok {
		return repository.ErrUnknownEngagementType
	}

	doc := EngagementDoc{
		Type:      engagement.Type,
		ViewerID:  engagement.ViewerID,
		CreatedAt: engagement.CreatedAt,
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "engagements", Value: concatOne("$engagements", doc)},
			{Key: field, Value: bson.M{"$add": bson.A{"$" + field, 1}}},
			{Key: "last_event_at", Value: bson.M{"$max": bson.A{"$last_event_at", engagement.CreatedAt}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "metrics.engagement_rate", Value: engagementRateExpr()},
		}}},
	}
	return s.apply(ctx, engagement.ContentID, pipeline)
}

func (s *analyticsRepoImpl) apply(ctx context.Context, contentID uint64, pipeline mongo.Pipeline) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"content_id": contentID}, pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrAnalyticsMissing
	}
	return nil
}

// concatOne 在数组末尾追加一个元素，$literal 防止字段值被当作表达式解析
func concatOne(path string, item interface{}) bson.M {
	return bson.M{"$concatArrays": bson.A{
		bson.M{"$ifNull": bson.A{path, bson.A{}}},
		bson.A{bson.M{"$literal": item}},
	}}
}

func engagementRateExpr() bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$metrics.total_views", 0}},
		0,
		bson.M{"$multiply": bson.A{
			bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{"$metrics.total_likes", "$metrics.total_comments", "$metrics.total_shares"}},
				"$metrics.total_views",
			}},
			100,
		}},
	}}
}

func averageDurationExpr() bson.M {
	return bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$metrics.timed_views", 0}},
		0,
		bson.M{"$divide": bson.A{"$metrics.total_view_duration", "$metrics.timed_views"}},
	}}
}

func (s *analyticsRepoImpl) ListViewTimes(ctx context.Context, creatorID uint64, start, end time.Time) ([]time.Time, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"creator_id": creatorID, "last_event_at": bson.M{"$gte": start}}}},
		{{Key: "$unwind", Value: "$views"}},
		{{Key: "$match", Value: bson.M{"views.viewed_at": bson.M{"$gte": start, "$lte": end}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "viewed_at": "$views.viewed_at"}}},
		{{Key: "$sort", Value: bson.D{{Key: "viewed_at", Value: 1}}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var rows []struct {
		ViewedAt time.Time `bson:"viewed_at"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, row.ViewedAt)
	}
	return times, nil
}

func (s *analyticsRepoImpl) CountEvents(ctx context.Context, q *repository.AnalyticsQuery) (map[uint64]*repository.WindowCounts, error) {
	match := bson.M{"creator_id": q.CreatorID}
	if q.ContentID != 0 {
		match["content_id"] = q.ContentID
	}
	if q.Start != nil {
		match["last_event_at"] = bson.M{"$gte": *q.Start}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"content_id": 1,
			"views":      countInWindow("$views", "viewed_at", "", q.Start, q.End),
			"likes":      countInWindow("$engagements", "created_at", consts.EngagementLike, q.Start, q.End),
			"comments":   countInWindow("$engagements", "created_at", consts.EngagementComment, q.Start, q.End),
			"shares":     countInWindow("$engagements", "created_at", consts.EngagementShare, q.Start, q.End),
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var rows []struct {
		ContentID uint64 `bson:"content_id"`
		Views     int64  `bson:"views"`
		Likes     int64  `bson:"likes"`
		Comments  int64  `bson:"comments"`
		Shares    int64  `bson:"shares"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[uint64]*repository.WindowCounts)
	for _, row := range rows {
		c := repository.WindowCounts{Views: row.Views, Likes: row.Likes, Comments: row.Comments, Shares: row.Shares}
		if c.Views+c.Engagements() == 0 {
			continue
		}
		counts[row.ContentID] = &c
	}
	return counts, nil
}

// countInWindow 数组中时间落在窗口内（可选限定互动类型）的元素个数
func countInWindow(input, timeField, engagementType string, start, end *time.Time) bson.M {
	conds := bson.A{}
	if start != nil {
		conds = append(conds, bson.M{"$gte": bson.A{"$$e." + timeField, *start}})
	}
	if end != nil {
		conds = append(conds, bson.M{"$lte": bson.A{"$$e." + timeField, *end}})
	}
	if engagementType != "" {
		conds = append(conds, bson.M{"$eq": bson.A{"$$e.type", engagementType}})
	}
	var cond interface{} = true
	if len(conds) > 0 {
		cond = bson.M{"$and": conds}
	}
	return bson.M{"$size": bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{input, bson.A{}}},
		"as":    "e",
		"cond":  cond,
	}}}
}

func (s *analyticsRepoImpl) ListViews(ctx context.Context, contentID uint64) ([]*model.ViewEvent, error) {
	doc, err := s.findDoc(ctx, contentID, bson.D{{Key: "content_id", Value: 1}, {Key: "views", Value: 1}})
	if err != nil {
		return nil, err
	}
	views := make([]*model.ViewEvent, 0)
	if doc == nil {
		return views, nil
	}
	for i, v := range doc.Views {
		view := v.toModel(contentID)
		view.ID = uint64(i + 1)
		views = append(views, &view)
	}
	return views, nil
}

func (s *analyticsRepoImpl) SaveRollup(ctx context.Context, contentID uint64, demographics model.Demographics, timeStats model.TimeStats) error {
	update := bson.M{"$set": bson.M{
		"demographics": DemographicsDoc{
			AgeRanges:    demographics.AgeRanges,
			Genders:      demographics.Genders,
			TopCountries: demographics.TopCountries,
		},
		"time_stats": TimeStatsDoc{
			PeakHours:    timeStats.PeakHours,
			WeekdayStats: timeStats.WeekdayStats,
		},
		"updated_at": time.Now().UTC(),
	}}
	_, err := s.col.UpdateOne(ctx, bson.M{"content_id": contentID}, update)
	return err
}
