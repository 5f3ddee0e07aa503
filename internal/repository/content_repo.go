package repository

import (
	"Lumen/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ContentRepo 内容存在性查询，contents 表由内容服务维护，这里只读
type ContentRepo interface {
	GetContent(ctx context.Context, id uint64) (*model.Content, error)
	GetContentByIds(ctx context.Context, ids []uint64) ([]*model.Content, error)
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepo {
	return &contentRepoImpl{db: db}
}

// GetContent 内容不存在或已删除时返回 nil, nil
func (s *contentRepoImpl) GetContent(ctx context.Context, id uint64) (*model.Content, error) {
	var content model.Content
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (s *contentRepoImpl) GetContentByIds(ctx context.Context, ids []uint64) ([]*model.Content, error) {
	contents := make([]*model.Content, 0, len(ids))
	if len(ids) == 0 {
		return contents, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}
