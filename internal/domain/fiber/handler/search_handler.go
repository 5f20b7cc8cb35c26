package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hfortier/linkstash/internal/dto"
	"github.com/hfortier/linkstash/internal/usecase"
	"github.com/hfortier/linkstash/internal/util"
)

type SearchHandler struct {
	uc *usecase.SearchUsecase
}

func NewSearchHandler(uc *usecase.SearchUsecase) *SearchHandler {
	return &SearchHandler{uc: uc}
}

func (h *SearchHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/search/semantic", h.Semantic)
}

// Semantic runs a vector similarity search over stored page content.
func (h *SearchHandler) Semantic(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		formErr := util.NewFormError("q is required", map[string]string{"q": "required"})
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}
	limit := c.QueryInt("limit", 10)

	matches, err := h.uc.Search(c.Context(), query, limit)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "semantic search failed",
		}, err)
	}

	data := make([]dto.SearchResultDTO, 0, len(matches))
	for _, m := range matches {
		data = append(data, dto.SearchResultDTO{
			URL:            m.URL,
			ContentPreview: m.ContentPreview,
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success semantic search",
		Data:    data,
	})
}
