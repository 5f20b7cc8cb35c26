package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/dto"
	"github.com/hfortier/linkstash/internal/response"
	"github.com/hfortier/linkstash/internal/usecase"
	"github.com/hfortier/linkstash/internal/util"
)

type BookmarkHandler struct {
	uc *usecase.BookmarkUsecase
}

func NewBookmarkHandler(uc *usecase.BookmarkUsecase) *BookmarkHandler {
	return &BookmarkHandler{uc: uc}
}

func (h *BookmarkHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/collections", h.ListCollections)
	app.Post("/collections", h.CreateCollection)
	app.Delete("/collections/:id", h.DeleteCollection)
	app.Get("/collections/:id/bookmarks", h.CollectionBookmarks)
	app.Post("/collections/:id/bookmarks", h.CreateCollectionBookmark)

	app.Get("/bookmarks", h.ListBookmarks)
	app.Post("/bookmarks", h.CreateBookmark)

	app.Get("/tags", h.ListTags)
}

func (h *BookmarkHandler) ListCollections(c *fiber.Ctx) error {
	collections, err := h.uc.ListCollections(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list collections",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list collections",
		Data:    collections,
	})
}

type createCollectionRequest struct {
	Name string `json:"name"`
}

func (h *BookmarkHandler) CreateCollection(c *fiber.Ctx) error {
	var req createCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.Name == "" {
		formErr := util.NewFormError("name is required", map[string]string{"name": "required"})
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}

	collection, err := h.uc.CreateCollection(c.Context(), req.Name)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create collection",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create collection",
		Data:    collection,
	})
}

func (h *BookmarkHandler) DeleteCollection(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid collection id",
		}, err)
	}

	if err := h.uc.DeleteCollection(c.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrCollectionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "collection not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to delete collection",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete collection",
	})
}

func (h *BookmarkHandler) CollectionBookmarks(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid collection id",
		}, err)
	}

	bookmarks, err := h.uc.CollectionBookmarks(c.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrCollectionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "collection not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list collection bookmarks",
		}, err)
	}

	data := make([]dto.BookmarkDTO, 0, len(bookmarks))
	for i := range bookmarks {
		data = append(data, dto.NewBookmarkDTO(&bookmarks[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list collection bookmarks",
		Data:    data,
	})
}

// CreateCollectionBookmark creates a bookmark directly inside a collection.
// The path id wins over any collection_id in the body.
func (h *BookmarkHandler) CreateCollectionBookmark(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid collection id",
		}, err)
	}

	var req createBookmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.URL == "" {
		formErr := util.NewFormError("url is required", map[string]string{"url": "required"})
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}

	bookmark, err := h.uc.CreateBookmark(c.Context(), req.URL, req.Title, req.Description, &id)
	if err != nil {
		if errors.Is(err, usecase.ErrCollectionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "collection not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create bookmark",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create bookmark",
		Data:    dto.NewBookmarkDTO(bookmark),
	})
}

func (h *BookmarkHandler) ListBookmarks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	bookmarks, total, err := h.uc.ListBookmarks(c.Context(), page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list bookmarks",
		}, err)
	}

	data := make([]dto.BookmarkDTO, 0, len(bookmarks))
	for i := range bookmarks {
		data = append(data, dto.NewBookmarkDTO(&bookmarks[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list bookmarks",
		Data:       data,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

type createBookmarkRequest struct {
	URL          string  `json:"url"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CollectionID *string `json:"collection_id"`
}

func (h *BookmarkHandler) CreateBookmark(c *fiber.Ctx) error {
	var req createBookmarkRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.URL == "" {
		formErr := util.NewFormError("url is required", map[string]string{"url": "required"})
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}

	var collectionID *uuid.UUID
	if req.CollectionID != nil && *req.CollectionID != "" {
		id, err := uuid.Parse(*req.CollectionID)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid collection id",
			}, err)
		}
		collectionID = &id
	}

	bookmark, err := h.uc.CreateBookmark(c.Context(), req.URL, req.Title, req.Description, collectionID)
	if err != nil {
		if errors.Is(err, usecase.ErrCollectionNotFound) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "collection not found",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create bookmark",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create bookmark",
		Data:    dto.NewBookmarkDTO(bookmark),
	})
}

func (h *BookmarkHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.uc.ListTags(c.Context())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list tags",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list tags",
		Data:    tags,
	})
}
