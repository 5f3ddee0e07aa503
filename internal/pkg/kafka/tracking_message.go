package kafka

import (
	"Lumen/internal/api/dto"
	"fmt"

	"github.com/goccy/go-json"
)

const (
	EventView       = "view"
	EventEngagement = "engagement"
)

// TrackingMessage 埋点网关投递的事件
type TrackingMessage struct {
	Event      string `json:"event"`
	ContentID  uint64 `json:"content_id"`
	ViewerID   uint64 `json:"viewer_id"`
	DeviceType string `json:"device_type,omitempty"`
	Location   string `json:"location,omitempty"`
	AgeRange   string `json:"age_range,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Duration   int64  `json:"duration,omitempty"`
	Type       string `json:"type,omitempty"`
}

// ParseTrackingMessage 解析消息体，格式错误视为不可重试
func ParseTrackingMessage(value []byte) (*TrackingMessage, error) {
	var msg TrackingMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal tracking message: %v", errDiscard, err)
	}
	if msg.ContentID == 0 {
		return nil, fmt.Errorf("%w: missing content_id", errDiscard)
	}
	switch msg.Event {
	case EventView, EventEngagement:
	default:
		return nil, fmt.Errorf("%w: unknown event %q", errDiscard, msg.Event)
	}
	return &msg, nil
}

func (m *TrackingMessage) ViewDTO() *dto.TrackViewDTO {
	return &dto.TrackViewDTO{
		DeviceType: m.DeviceType,
		Location:   m.Location,
		AgeRange:   m.AgeRange,
		Gender:     m.Gender,
		Duration:   m.Duration,
	}
}

func (m *TrackingMessage) EngagementDTO() *dto.TrackEngagementDTO {
	return &dto.TrackEngagementDTO{Type: m.Type}
}
