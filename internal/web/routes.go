package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dominikstraub/Waddle/internal/database"
	"github.com/dominikstraub/Waddle/internal/gpx"
	"github.com/dominikstraub/Waddle/internal/models"
	"github.com/dominikstraub/Waddle/internal/parser"
)

// Store is the database surface the handlers use.
type Store interface {
	CreateActivity(ctx context.Context, source, contentHash string, activity *models.Activity) (string, error)
	ContentExists(ctx context.Context, contentHash string) (bool, error)
	GetActivity(ctx context.Context, id string) (*database.Activity, error)
	GetLaps(ctx context.Context, id string) ([]database.Lap, error)
	GetTrackPoints(ctx context.Context, id string) ([]database.TrackPoint, error)
	FilterActivities(ctx context.Context, filters database.ActivityFilters) ([]database.Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*database.Stats, error)
}

type WebHandler struct {
	db             Store
	parser         parser.Parser
	maxUploadBytes int64
}

func NewWebHandler(db Store, p parser.Parser, maxUploadBytes int64) *WebHandler {
	return &WebHandler{
		db:             db,
		parser:         p,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *WebHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/stats", h.Stats)
	router.GET("/activities", h.ActivityList)
	router.POST("/activities", h.Upload)
	router.GET("/activities/:id", h.ActivityDetail)
	router.GET("/activities/:id/trackpoints", h.TrackPoints)
	router.DELETE("/activities/:id", h.Delete)
}

func (h *WebHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *WebHandler) Stats(c *gin.Context) {
	stats, err := h.db.GetStats(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *WebHandler) ActivityList(c *gin.Context) {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters := database.ActivityFilters{
		ActivityType: c.Query("type"),
		Limit:        limit,
		Offset:       offset,
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from: " + err.Error()})
			return
		}
		filters.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid to: " + err.Error()})
			return
		}
		filters.DateTo = &t
	}

	activities, err := h.db.FilterActivities(c.Request.Context(), filters)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *WebHandler) ActivityDetail(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	activity, err := h.db.GetActivity(ctx, id)
	if err != nil {
		abort(c, err)
		return
	}

	laps, err := h.db.GetLaps(ctx, id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": activity, "laps": laps})
}

func (h *WebHandler) TrackPoints(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := h.db.GetActivity(ctx, id); err != nil {
		abort(c, err)
		return
	}

	points, err := h.db.GetTrackPoints(ctx, id)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, points)
}

func (h *WebHandler) Delete(c *gin.Context) {
	if err := h.db.DeleteActivity(c.Request.Context(), c.Param("id")); err != nil {
		abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Upload parses a GPX file sent as the multipart field "file" and stores
// every track in it as an activity. A file whose content is already stored
// is rejected with 409.
func (h *WebHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortUpload(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		abort(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortUpload(c, err)
		return
	}

	if err := parser.CheckGPX(data); err != nil {
		abort(c, err)
		return
	}

	ctx := c.Request.Context()
	hash := database.ContentHash(data)
	exists, err := h.db.ContentExists(ctx, hash)
	if err != nil {
		abort(c, err)
		return
	}
	if exists {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "file already imported"})
		return
	}

	activities, err := h.parser.ParseReaderMulti(bytes.NewReader(data))
	if err != nil {
		abort(c, err)
		return
	}

	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		id, err := h.db.CreateActivity(ctx, header.Filename, hash, a)
		if err != nil {
			abort(c, err)
			return
		}
		ids = append(ids, id)
	}

	status := http.StatusCreated
	if len(ids) == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"ids": ids})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrActivityNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrInvalidSort):
		return http.StatusBadRequest
	case errors.Is(err, gpx.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupportedFormat),
		errors.Is(err, parser.ErrInvalidActivity),
		errors.Is(err, parser.ErrMissingTimestamp):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func abortUpload(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key + ": " + v)
	}
	return n, nil
}
