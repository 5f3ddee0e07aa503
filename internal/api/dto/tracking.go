package dto

// TrackViewDTO 浏览上报，所有字段可选
type TrackViewDTO struct {
	DeviceType string `json:"deviceType" validate:"omitempty,max=32"`
	Location   string `json:"location" validate:"omitempty,max=64"`
	AgeRange   string `json:"ageRange" validate:"omitempty,oneof=13-17 18-24 25-34 35-44 45-54 55+"`
	Gender     string `json:"gender" validate:"omitempty,oneof=male female other"`
	Duration   int64  `json:"duration" validate:"omitempty,min=0,max=86400"` // 秒
}

// TrackEngagementDTO 互动上报，类型合法性由业务层判定
type TrackEngagementDTO struct {
	Type string `json:"type" validate:"required,max=16"`
}
