package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"bitrate-lab/internal/chart"
	"bitrate-lab/internal/config"
	"bitrate-lab/internal/report"
	"bitrate-lab/internal/storage"
	"bitrate-lab/internal/worker"
	"bitrate-lab/pkg/models"
)

type PresignedRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

// ObjectStore is the part of storage.S3Client the API talks to.
type ObjectStore interface {
	GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error)
	GeneratePresignedPut(ctx context.Context, objectKey string, ttl time.Duration) (*v4.PresignedHTTPRequest, error)
	GeneratePresignedGet(ctx context.Context, objectKey string, ttl time.Duration) (*v4.PresignedHTTPRequest, error)
}

// TaskQueue is satisfied by *asynq.Client.
type TaskQueue interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type API struct {
	Store  ObjectStore
	Queue  TaskQueue
	Config *config.Config
	Logger *slog.Logger
}

func (api *API) key(parts ...string) string {
	return storage.Key(append([]string{api.Config.Storage.Prefix}, parts...)...)
}

func (api *API) handleCreateUpload(c *gin.Context) {
	var req PresignedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sweepID := uuid.New().String()
	fileName := filepath.Base(req.FileName)
	if fileName == "." || fileName == "/" || fileName == ".." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file name"})
		return
	}
	objectKey := api.key(sweepID, "source", fileName)
	ttl := api.Config.PresignTTL()

	result, err := api.Store.GeneratePresignedPut(c.Request.Context(), objectKey, ttl)
	if err != nil {
		api.Logger.Error("presign upload failed", slog.String("key", objectKey), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate presigned URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sweepId":   sweepID,
		"sourceKey": objectKey,
		"url":       result.URL,
		"expiresAt": time.Now().Add(ttl).UnixMilli(),
	})
}

func (api *API) handleCreateSweepJob(c *gin.Context) {
	var req models.SweepPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := validateLadders(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.SkipVideo && req.SkipAudio {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to do: both halves skipped"})
		return
	}
	if req.SweepID == "" {
		req.SweepID = uuid.New().String()
	}
	id, err := models.NormalizeSweepID(req.SweepID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.SweepID = id

	task, err := models.NewSweepTask(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	info, err := api.Queue.Enqueue(task, asynq.MaxRetry(api.Config.Queue.MaxRetry))
	if err != nil {
		api.Logger.Error("enqueue failed", slog.String("sweep_id", req.SweepID), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue task"})
		return
	}
	api.Logger.Info("enqueued sweep", slog.String("task_id", info.ID), slog.String("queue", info.Queue), slog.String("sweep_id", req.SweepID))
	c.JSON(http.StatusOK, gin.H{
		"message":  "Sweep job has been queued",
		"task_id":  info.ID,
		"sweep_id": req.SweepID,
	})
}

func validateLadders(req models.SweepPayload) error {
	if len(req.VideoBitrates) > 0 {
		if _, err := worker.NewLadder(req.VideoBitrates, req.VideoQuality); err != nil {
			return err
		}
	}
	if len(req.AudioBitrates) > 0 {
		if _, err := worker.NewLadder(req.AudioBitrates, req.AudioQuality); err != nil {
			return err
		}
	}
	return nil
}

// sweepParam reads and checks the :sweepId path parameter, writing a 400
// when it is not a UUID.
func sweepParam(c *gin.Context) (string, bool) {
	id, err := models.NormalizeSweepID(c.Param("sweepId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

func (api *API) handleGetSweep(c *gin.Context) {
	sweepID, ok := sweepParam(c)
	if !ok {
		return
	}
	objectKey := api.key(sweepID, report.FileName)

	body, err := api.Store.GetObject(c.Request.Context(), objectKey)
	if err != nil {
		api.Logger.Warn("report lookup failed", slog.String("key", objectKey), slog.Any("error", err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Sweep report not found"})
		return
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read report"})
		return
	}
	c.Header("Cache-Control", "max-age=300")
	c.Data(http.StatusOK, "application/json", data)
}

func (api *API) handleGetChart(c *gin.Context) {
	sweepID, ok := sweepParam(c)
	if !ok {
		return
	}
	kind := models.MediaKind(c.Param("kind"))
	if kind != models.MediaVideo && kind != models.MediaAudio {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chart kind"})
		return
	}

	objectKey := api.key(sweepID, chart.FileName(kind))
	result, err := api.Store.GeneratePresignedGet(c.Request.Context(), objectKey, api.Config.PresignTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign URL"})
		return
	}
	c.Redirect(http.StatusFound, result.URL)
}
