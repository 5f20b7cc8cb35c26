package handler

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hfortier/linkstash/internal/dto"
	"github.com/hfortier/linkstash/internal/middleware"
	"github.com/hfortier/linkstash/internal/model"
	"github.com/hfortier/linkstash/internal/usecase"
	"github.com/hfortier/linkstash/internal/util"
)

type ScrapeHandler struct {
	uc *usecase.ScrapeUsecase
}

func NewScrapeHandler(uc *usecase.ScrapeUsecase) *ScrapeHandler {
	return &ScrapeHandler{uc: uc}
}

func (h *ScrapeHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/scrapper/scrape", middleware.RateLimiter(10, 1*time.Minute), h.Scrape)
	app.Get("/scrapper/task/:id", h.Task)
	app.Get("/scrapper/tasks", h.Tasks)
	app.Delete("/scrapper/task/:id", h.DeleteTask)
}

type scrapeRequest struct {
	URL string `json:"url"`
}

// Scrape accepts a URL and returns the job tracking it. Resubmitting a URL
// whose job has not failed returns the existing job instead of a new one.
func (h *ScrapeHandler) Scrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	if formErr := validateScrapeURL(req.URL); formErr != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: formErr.Message,
			Details: formErr.Errors,
		})
	}

	job, created, err := h.uc.Submit(c.Context(), req.URL)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit scrape job",
		}, err)
	}

	code := fiber.StatusOK
	message := "Scrape job already in progress"
	if created {
		code = fiber.StatusAccepted
		message = "Scrape job submitted"
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    code,
		Message: message,
		Data:    fiber.Map{"id": job.ID, "status": job.Status},
	})
}

func validateScrapeURL(raw string) *util.FormError {
	if raw == "" {
		return util.NewFormError("url is required", map[string]string{"url": "required"})
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return util.NewFormError("url must be a valid http(s) URL", map[string]string{"url": "invalid"})
	}
	return nil
}

// Task returns the full state of one job, including parsed results for
// completed jobs. The cached status mirror, when warm, is reported alongside.
func (h *ScrapeHandler) Task(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid task id",
		}, err)
	}

	job, err := h.uc.GetJob(c.Context(), id.String())
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load task",
		}, err)
	}
	if job == nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "task not found",
		})
	}

	var meta any
	if cached, ok := h.uc.CachedStatus(c.Context(), job.ID); ok {
		meta = fiber.Map{"cached_status": cached}
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get task",
		Data:    dto.NewJobDTO(job),
		Meta:    meta,
	})
}

// Tasks lists jobs newest-first. An optional status query filters the list;
// an unknown status is rejected rather than returning everything.
func (h *ScrapeHandler) Tasks(c *fiber.Ctx) error {
	var status *model.JobStatus
	if raw := c.Query("status"); raw != "" {
		s := model.JobStatus(raw)
		switch s {
		case model.JobStatusPending, model.JobStatusProcessing, model.JobStatusCompleted, model.JobStatusFailed:
			status = &s
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "unknown status filter",
			})
		}
	}

	jobs, err := h.uc.ListJobs(c.Context(), status)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list tasks",
		}, err)
	}

	data := make([]dto.JobSummaryDTO, 0, len(jobs))
	for i := range jobs {
		data = append(data, dto.NewJobSummaryDTO(&jobs[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list tasks",
		Data:    data,
	})
}

// DeleteTask removes a terminal job. A job still processing cannot be
// deleted while its pipeline may yet write to it.
func (h *ScrapeHandler) DeleteTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid task id",
		}, err)
	}

	switch err := h.uc.DeleteJob(c.Context(), id.String()); {
	case errors.Is(err, usecase.ErrJobNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "task not found",
		})
	case errors.Is(err, usecase.ErrJobStillProcessing):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "task is still processing",
		})
	case err != nil:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to delete task",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete task",
	})
}
