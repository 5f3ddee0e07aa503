package service

import (
	"Lumen/internal/model"
	"Lumen/internal/pkg/consts"
	"Lumen/internal/repository"
	"context"
)

// Identity 已由鉴权中间件解析的调用方身份
type Identity struct {
	UserID uint64
	Roles  []string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool {
	return i.HasRole(consts.RoleAdmin)
}

// accessGuard 内容存在性与归属校验
type accessGuard struct {
	contentRepo repository.ContentRepo
}

// resolveContent 内容不存在时返回 ErrContentNotFound
func (g *accessGuard) resolveContent(ctx context.Context, contentID uint64) (*model.Content, error) {
	content, err := g.contentRepo.GetContent(ctx, contentID)
	if err != nil {
		return nil, persistenceError("get content", err)
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// authorize 仅内容作者或管理员可读
func (g *accessGuard) authorize(caller Identity, creatorID uint64) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.UserID != 0 && caller.UserID == creatorID {
		return nil
	}
	return ErrForbidden
}
