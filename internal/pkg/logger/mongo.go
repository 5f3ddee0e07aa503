package logger

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const mongoSlowThreshold = 200 * time.Millisecond

// NewMongoMonitor 记录失败与慢的 Mongo 命令，附带命令作用的集合
// 每次事件追加都是一条命令，成功且不慢的不记录
func NewMongoMonitor() *event.CommandMonitor {
	var collections sync.Map

	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if coll, ok := evt.Command.Lookup(evt.CommandName).StringValueOK(); ok {
				collections.Store(evt.RequestID, coll)
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			fields := mongoCmdFields(&collections, &evt.CommandFinishedEvent)
			if evt.Duration > mongoSlowThreshold {
				log.WarnContext(ctx, "MongoDB Slow", fields...)
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			fields := mongoCmdFields(&collections, &evt.CommandFinishedEvent)
			log.ErrorContext(ctx, "MongoDB Error", append(fields, log.String("err", evt.Failure))...)
		},
	}
}

func mongoCmdFields(collections *sync.Map, evt *event.CommandFinishedEvent) []any {
	fields := []any{
		log.String("command", evt.CommandName),
		log.Duration("latency", evt.Duration),
		log.Int64("request_id", evt.RequestID),
	}
	if coll, ok := collections.LoadAndDelete(evt.RequestID); ok {
		fields = append(fields, log.String("collection", coll.(string)))
	}
	return fields
}
