package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db}
}

func (r *CollectionRepository) Create(ctx context.Context, collection *model.Collection) error {
	return r.db.WithContext(ctx).Create(collection).Error
}

func (r *CollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (r *CollectionRepository) FindAll(ctx context.Context) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.WithContext(ctx).Order("name ASC").Find(&collections).Error
	return collections, err
}

// FindAllWithCounts lists collections together with their bookmark counts.
func (r *CollectionRepository) FindAllWithCounts(ctx context.Context) ([]model.Collection, error) {
	var collections []model.Collection
	err := r.db.WithContext(ctx).Raw(`
        SELECT c.*, COUNT(b.id) AS bookmarks_count
        FROM collections c
        LEFT JOIN bookmarks b ON b.collection_id = c.id
        GROUP BY c.id
        ORDER BY c.name ASC
    `).Scan(&collections).Error
	return collections, err
}

func (r *CollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Collection{}, "id = ?", id).Error
}
