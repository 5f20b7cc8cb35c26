package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db}
}

func (r *BookmarkRepository) Create(ctx context.Context, bookmark *model.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *BookmarkRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := r.db.WithContext(ctx).First(&bookmark, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// FindByURL returns (nil, nil) when no bookmark exists for the URL.
func (r *BookmarkRepository) FindByURL(ctx context.Context, url string) (*model.Bookmark, error) {
	var bookmark model.Bookmark
	err := r.db.WithContext(ctx).First(&bookmark, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (r *BookmarkRepository) List(ctx context.Context, offset, limit int) ([]model.Bookmark, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Bookmark{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookmarks []model.Bookmark
	err := r.db.WithContext(ctx).
		Preload("AISuggestion").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookmarks).Error
	return bookmarks, total, err
}

func (r *BookmarkRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// SaveSuggestion upserts the AI suggestion for a bookmark. bookmark_id is
// the primary key, so re-analysis replaces the previous suggestion.
func (r *BookmarkRepository) SaveSuggestion(ctx context.Context, suggestion *model.BookmarkAISuggestion) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bookmark_id"}},
			UpdateAll: true,
		}).
		Create(suggestion).Error
}
