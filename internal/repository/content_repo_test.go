package repository

import (
	"Lumen/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRepo_GetContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)
	ctx := context.Background()

	seedContent(t, db, 1, 10)
	require.NoError(t, db.Create(&model.Content{ID: 2, UserID: 10, ContentType: "article", Status: "published", IsDeleted: true}).Error)

	content, err := repo.GetContent(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, content)
	assert.Equal(t, uint64(10), content.UserID)

	deleted, err := repo.GetContent(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, deleted, "soft-deleted content is treated as absent")

	missing, err := repo.GetContent(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestContentRepo_GetContentByIds(t *testing.T) {
	db := newTestDB(t)
	repo := NewContentRepository(db)
	seedContent(t, db, 1, 10)
	seedContent(t, db, 2, 11)

	contents, err := repo.GetContentByIds(context.Background(), []uint64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, contents, 2)

	empty, err := repo.GetContentByIds(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
