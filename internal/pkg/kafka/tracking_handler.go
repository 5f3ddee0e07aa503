package kafka

import (
	"Lumen/internal/pkg/logger"
	"Lumen/internal/pkg/util"
	"Lumen/internal/service"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/IBM/sarama"
)

// 这些业务错误重试也不会成功
var nonRetryable = []error{
	service.ErrParamInvalid,
	service.ErrContentNotFound,
	service.ErrInvalidEngagementType,
	service.ErrMissingLoginCredentials,
}

type TrackingHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewTrackingHandler(analyticsSvc service.AnalyticsService) *TrackingHandler {
	return &TrackingHandler{
		analyticsSvc: analyticsSvc,
	}
}

func (s *TrackingHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("analytics tracking consumer setup")
	return nil
}

func (s *TrackingHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("analytics tracking consumer cleanup")
	return nil
}

func (s *TrackingHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-tracking consume claim", "partition", claim.Partition())
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-tracking process batch error", "err", err)
		return err
	}
	return nil
}

func (s *TrackingHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ctx = logger.NewTraceContext(ctx, "kafka-")

	trackingMsg, err := ParseTrackingMessage(msg.Value)
	if err != nil {
		return err
	}

	switch trackingMsg.Event {
	case EventView:
		req := trackingMsg.ViewDTO()
		if err = util.ValidateDTO(req); err != nil {
			return fmt.Errorf("%w: %v", errDiscard, err)
		}
		err = s.analyticsSvc.TrackView(ctx, trackingMsg.ContentID, trackingMsg.ViewerID, req)
	case EventEngagement:
		err = s.analyticsSvc.TrackEngagement(ctx, trackingMsg.ContentID, trackingMsg.ViewerID, trackingMsg.EngagementDTO())
	}
	return classify(err)
}

// classify 业务校验失败的消息丢弃，其余错误交给重试
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, e := range nonRetryable {
		if errors.Is(err, e) {
			return fmt.Errorf("%w: %w", errDiscard, err)
		}
	}
	return err
}
