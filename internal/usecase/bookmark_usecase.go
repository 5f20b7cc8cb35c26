package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/hfortier/linkstash/internal/repository"
)

// BookmarkUsecase covers the thin CRUD surface for bookmarks, collections
// and tags. No pipeline logic lives here.
type BookmarkUsecase struct {
	bookmarks   *repository.BookmarkRepository
	collections *repository.CollectionRepository
	tags        *repository.TagRepository
}

func NewBookmarkUsecase(
	bookmarks *repository.BookmarkRepository,
	collections *repository.CollectionRepository,
	tags *repository.TagRepository,
) *BookmarkUsecase {
	return &BookmarkUsecase{bookmarks: bookmarks, collections: collections, tags: tags}
}

func (uc *BookmarkUsecase) ListCollections(ctx context.Context) ([]model.Collection, error) {
	return uc.collections.FindAllWithCounts(ctx)
}

func (uc *BookmarkUsecase) CreateCollection(ctx context.Context, name string) (*model.Collection, error) {
	collection := &model.Collection{ID: uuid.New(), Name: name}
	if err := uc.collections.Create(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (uc *BookmarkUsecase) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	collection, err := uc.collections.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if collection == nil {
		return ErrCollectionNotFound
	}
	return uc.collections.Delete(ctx, id)
}

func (uc *BookmarkUsecase) CollectionBookmarks(ctx context.Context, id uuid.UUID) ([]model.Bookmark, error) {
	collection, err := uc.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, ErrCollectionNotFound
	}
	return uc.bookmarks.ListByCollection(ctx, id)
}

func (uc *BookmarkUsecase) CreateBookmark(ctx context.Context, url string, title, description *string, collectionID *uuid.UUID) (*model.Bookmark, error) {
	if collectionID != nil {
		collection, err := uc.collections.FindByID(ctx, *collectionID)
		if err != nil {
			return nil, err
		}
		if collection == nil {
			return nil, ErrCollectionNotFound
		}
	}
	bookmark := &model.Bookmark{
		ID:           uuid.New(),
		URL:          url,
		Title:        title,
		Description:  description,
		CollectionID: collectionID,
	}
	if err := uc.bookmarks.Create(ctx, bookmark); err != nil {
		return nil, err
	}
	return bookmark, nil
}

func (uc *BookmarkUsecase) ListBookmarks(ctx context.Context, page, pageSize int) ([]model.Bookmark, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.bookmarks.List(ctx, (page-1)*pageSize, pageSize)
}

func (uc *BookmarkUsecase) ListTags(ctx context.Context) ([]model.Tag, error) {
	return uc.tags.FindAll(ctx)
}
