package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
	"github.com/jonafit/coach-platform/internal/diet"
	"github.com/jonafit/coach-platform/internal/jobs"
	"github.com/jonafit/coach-platform/internal/logger"
	"github.com/jonafit/coach-platform/internal/workout"
)

const idempotencyKeyMax = 128

type createJobReq struct {
	Kind    string          `json:"kind" binding:"required"`
	Request json.RawMessage `json:"request" binding:"required"`
}

// CreateGenerationJob enqueues an async workout or diet generation. A
// repeated Idempotency-Key returns the original job without enqueuing
// a second run.
func (h *Handler) CreateGenerationJob(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createJobReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}
	kind := jobs.Kind(req.Kind)
	if !jobs.ValidKind(kind) {
		common.Fail(c, http.StatusBadRequest, 40004, "kind must be workout or diet")
		return
	}

	// Reject payloads the worker could never decode.
	var payloadErr error
	switch kind {
	case jobs.KindWorkout:
		var wr workout.Request
		payloadErr = json.Unmarshal(req.Request, &wr)
	case jobs.KindDiet:
		var dr diet.Request
		payloadErr = json.Unmarshal(req.Request, &dr)
	}
	if payloadErr != nil {
		common.Fail(c, http.StatusBadRequest, 40005, "invalid generation request payload")
		return
	}

	job := &jobs.Job{
		ID:      common.NewULID(),
		UserID:  u.ID,
		Kind:    kind,
		Request: string(req.Request),
		Status:  jobs.StatusQueued,
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		if len(key) > idempotencyKeyMax {
			common.Fail(c, http.StatusBadRequest, 40006, "Idempotency-Key too long")
			return
		}
		job.IdempotencyKey = &key
	}

	created, isNew, err := h.JobsRepo.CreateOrGetExisting(c.Request.Context(), job)
	if err != nil {
		logger.Errorf("create job: %v", err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	if isNew {
		if err := h.Rabbit.PublishJob(c.Request.Context(), created.ID); err != nil {
			logger.Errorw("publish job", "job_id", created.ID, "err", err)
			// The row would sit queued forever with no consumer delivery,
			// so fail it and report the error to the caller.
			_ = h.JobsRepo.MarkFailed(c.Request.Context(), created.ID, "enqueue failed")
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, created)
}

// GetGenerationJob hides jobs owned by other users behind a 404.
func (h *Handler) GetGenerationJob(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	job, err := h.JobsRepo.GetByID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		failFromErr(c, err)
		return
	}
	if job.UserID != u.ID {
		common.Fail(c, http.StatusNotFound, 40401, "not found")
		return
	}
	common.OK(c, job)
}
