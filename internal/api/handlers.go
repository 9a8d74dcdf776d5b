package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/romangod6/mastodon-sitemap/internal/generator"
	"github.com/romangod6/mastodon-sitemap/internal/storage"
)

// Runner produces one sitemap per call.
type Runner interface {
	Run(ctx context.Context) (*generator.Result, error)
}

type Handler struct {
	runner     Runner
	store      storage.Store
	outputPath string
	logger     *zap.Logger

	// only one run writes the output file at a time
	runMu sync.Mutex
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func NewHandler(runner Runner, store storage.Store, outputPath string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		runner:     runner,
		store:      store,
		outputPath: outputPath,
		logger:     logger,
	}
}

func (h *Handler) GetSitemap(c *gin.Context) {
	if _, err := os.Stat(h.outputPath); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Sitemap has not been generated yet"})
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.File(h.outputPath)
}

func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Run history is not configured"})
		return
	}

	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	runs, err := h.store.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch runs"})
		return
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  runs,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Run history is not configured"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid run ID"})
		return
	}

	run, err := h.store.GetRun(c.Request.Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Run not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch run", zap.String("run_id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *Handler) TriggerRun(c *gin.Context) {
	if !h.runMu.TryLock() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "A run is already in progress"})
		return
	}
	defer h.runMu.Unlock()

	// A client that disconnects must not abort the run half way.
	result, err := h.runner.Run(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, generator.ErrAccountNotFound) {
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run":     result.Run,
		"written": result.Written,
	})
}

// RunOnce waits for any in-flight run and then runs the generator.
func (h *Handler) RunOnce(ctx context.Context) (*generator.Result, error) {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.runner.Run(ctx)
}

func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
