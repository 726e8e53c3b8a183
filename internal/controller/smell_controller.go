package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"smellsense/internal/ensemble"
	"smellsense/internal/service"
	"smellsense/internal/smells"
	"smellsense/internal/store"
	"smellsense/internal/unit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	maxBatchSize        = 100
)

// SmellService is the part of the service layer the controller needs
type SmellService interface {
	Classify(ctx context.Context, in unit.Input, save bool) (*ensemble.Verdict, *store.Record, error)
	Engine() *ensemble.Engine
	Recent(ctx context.Context, limit int) ([]*store.Record, error)
	Stats(ctx context.Context) (*store.Stats, error)
	HistoryEnabled() bool
}

// SmellController handles the classification HTTP endpoints
type SmellController struct {
	service SmellService
	workers int
	logger  *zap.Logger
}

func NewSmellController(svc SmellService, workers int, logger *zap.Logger) *SmellController {
	return &SmellController{service: svc, workers: workers, logger: logger}
}

// ClassifyRequest is the body of POST /api/v1/classify
type ClassifyRequest struct {
	unit.Input
	// Save records the verdict in the history store
	Save bool `json:"save"`
}

type ClassifyResponse struct {
	RequestID string            `json:"request_id"`
	RecordID  string            `json:"record_id,omitempty"`
	Verdict   *ensemble.Verdict `json:"verdict"`
}

// ClassifyBatchRequest is the body of POST /api/v1/classifyBatch
type ClassifyBatchRequest struct {
	Items []unit.Input `json:"items" binding:"required"`
}

type ClassifyBatchResponse struct {
	RequestID string              `json:"request_id"`
	Verdicts  []*ensemble.Verdict `json:"verdicts"`
}

// Classify handles POST /api/v1/classify
func (sc *SmellController) Classify(c *gin.Context) {
	requestID := uuid.New().String()

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sc.badRequest(c, requestID, "Invalid request payload", err)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		sc.badRequest(c, requestID, "Invalid request payload", errors.New("code must not be empty"))
		return
	}
	if req.Save && !sc.service.HistoryEnabled() {
		sc.unavailable(c, requestID, service.ErrHistoryDisabled)
		return
	}

	sc.logger.Info("Classifying code unit",
		zap.String("request_id", requestID),
		zap.String("language", string(req.Language)),
		zap.Int("bytes", len(req.Source)))

	verdict, record, err := sc.service.Classify(c.Request.Context(), req.Input, req.Save)
	if err != nil && verdict == nil {
		sc.failed(c, requestID, "Classification failed", err)
		return
	}
	if err != nil {
		sc.failed(c, requestID, "Failed to record verdict", err)
		return
	}

	response := ClassifyResponse{RequestID: requestID, Verdict: verdict}
	if record != nil {
		response.RecordID = record.ID
	}
	c.JSON(http.StatusOK, response)
}

// ClassifyBatch handles POST /api/v1/classifyBatch
func (sc *SmellController) ClassifyBatch(c *gin.Context) {
	requestID := uuid.New().String()

	var req ClassifyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sc.badRequest(c, requestID, "Invalid request payload", err)
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchSize {
		sc.badRequest(c, requestID, "Invalid request payload",
			errors.New("items must hold between 1 and "+strconv.Itoa(maxBatchSize)+" entries"))
		return
	}

	sc.logger.Info("Classifying batch",
		zap.String("request_id", requestID),
		zap.Int("items", len(req.Items)))

	verdicts, err := sc.service.Engine().ClassifyAll(c.Request.Context(), req.Items, sc.workers)
	if err != nil {
		sc.failed(c, requestID, "Classification failed", err)
		return
	}
	c.JSON(http.StatusOK, ClassifyBatchResponse{RequestID: requestID, Verdicts: verdicts})
}

type taxonomyEntry struct {
	Smell    smells.Kind      `json:"smell"`
	Name     string           `json:"name"`
	Priority int              `json:"priority"`
	Class    smells.KindClass `json:"class"`
}

// Taxonomy handles GET /api/v1/taxonomy
func (sc *SmellController) Taxonomy(c *gin.Context) {
	entries := make([]taxonomyEntry, 0, len(smells.AllKinds()))
	for _, kind := range smells.AllKinds() {
		entries = append(entries, taxonomyEntry{
			Smell:    kind,
			Name:     kind.DisplayName(),
			Priority: kind.Priority(),
			Class:    kind.Class(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"smells": entries})
}

// History handles GET /api/v1/history?limit=N
func (sc *SmellController) History(c *gin.Context) {
	requestID := uuid.New().String()

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			sc.badRequest(c, requestID, "Invalid limit",
				errors.New("limit must be an integer between 1 and "+strconv.Itoa(maxHistoryLimit)))
			return
		}
		limit = n
	}

	records, err := sc.service.Recent(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrHistoryDisabled) {
			sc.unavailable(c, requestID, err)
			return
		}
		sc.failed(c, requestID, "Failed to read history", err)
		return
	}

	stats, err := sc.service.Stats(c.Request.Context())
	if err != nil {
		sc.failed(c, requestID, "Failed to read history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request_id": requestID,
		"records":    records,
		"stats":      stats,
	})
}

func (sc *SmellController) badRequest(c *gin.Context, requestID, message string, err error) {
	sc.logger.Error(message, zap.String("request_id", requestID), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"request_id": requestID,
		"error":      message,
		"details":    err.Error(),
	})
}

func (sc *SmellController) unavailable(c *gin.Context, requestID string, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"request_id": requestID,
		"error":      err.Error(),
	})
}

func (sc *SmellController) failed(c *gin.Context, requestID, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	sc.logger.Error(message, zap.String("request_id", requestID), zap.Error(err))
	c.JSON(status, gin.H{
		"request_id": requestID,
		"error":      message,
		"details":    err.Error(),
	})
}
