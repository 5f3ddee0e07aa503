package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 100 * time.Millisecond

// RedisLoggerHook 只记录失败与慢命令；脏集合的成员可能很多，参数只记 key 和个数
type RedisLoggerHook struct {
	slow time.Duration
}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{slow: redisSlowThreshold}
}

// DialHook 建连失败会随命令错误一并记录
func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil {
			if !expectedRedisError(cmd.Name(), err) {
				log.ErrorContext(ctx, "Redis Error", append(redisCmdFields(cmd, elapsed), log.Any("err", err))...)
			}
		} else if elapsed > s.slow {
			log.WarnContext(ctx, "Redis Slow", redisCmdFields(cmd, elapsed)...)
		}
		return err
	}
}

// ProcessPipelineHook 汇总任务的 RENAME/SUNIONSTORE 走事务管道
func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		if err != nil {
			if failed := firstFailed(cmds); failed != nil && !expectedRedisError(failed.Name(), failed.Err()) {
				log.ErrorContext(ctx, "Redis Pipeline Error",
					append(redisCmdFields(failed, elapsed), log.Int("cmd_count", len(cmds)), log.Any("err", err))...)
			} else if failed == nil && !expectedRedisError("", err) {
				log.ErrorContext(ctx, "Redis Pipeline Error",
					log.Int("cmd_count", len(cmds)),
					log.Duration("latency", elapsed),
					log.Any("err", err))
			}
		} else if elapsed > s.slow {
			log.WarnContext(ctx, "Redis Pipeline Slow",
				log.Int("cmd_count", len(cmds)),
				log.Duration("latency", elapsed))
		}
		return err
	}
}

func redisCmdFields(cmd redis.Cmder, elapsed time.Duration) []any {
	args := cmd.Args()
	fields := []any{
		log.String("command", cmd.Name()),
		log.Int("arg_count", len(args)),
		log.Duration("latency", elapsed),
	}
	switch cmd.Name() {
	case "auth", "hello", "client":
	default:
		if len(args) > 1 {
			fields = append(fields, log.String("key", fmt.Sprint(args[1])))
		}
	}
	return fields
}

func firstFailed(cmds []redis.Cmder) redis.Cmder {
	for _, cmd := range cmds {
		if cmd.Err() != nil {
			return cmd
		}
	}
	return nil
}

// expectedRedisError 空键与旧版本服务端的握手错误属于正常流程
func expectedRedisError(cmdName string, err error) bool {
	if errors.Is(err, redis.Nil) {
		return true
	}
	msg := err.Error()
	// 脏集合为空时 RENAME 返回 no such key
	if msg == "ERR no such key" {
		return true
	}
	return cmdName == "client" && strings.Contains(msg, "setinfo")
}
