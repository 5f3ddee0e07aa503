package model

import (
	"time"
)

// Content 内容主体，由内容服务维护，分析模块只读
type Content struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	UserID      uint64    `gorm:"not null;index:idx_content_user" json:"userId"`
	Title       string    `gorm:"type:varchar(255)" json:"title"`
	ContentType string    `gorm:"type:varchar(32);not null" json:"contentType"` // video, article, image, audio
	Status      string    `gorm:"type:varchar(32);not null;default:draft" json:"status"`
	IsDeleted   bool      `gorm:"type:tinyint(1);not null;default:0" json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Content) TableName() string {
	return "contents"
}
