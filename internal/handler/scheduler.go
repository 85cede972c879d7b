package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
	customError "github.com/yudhapr/bpjs-reminder-engine/pkg/errors"
	"github.com/yudhapr/bpjs-reminder-engine/pkg/response"
)

// SchedulerService is the slice of the engine the admin surface needs
type SchedulerService interface {
	RunScheduler(ctx context.Context) (*domain.SchedulerRunResult, error)
	SendPendingMessages(ctx context.Context) (int, error)
	TriggerProactiveMessage(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType) bool
	ListUnreachable(ctx context.Context) ([]*domain.Reminder, error)
}

// SchedulerHandler exposes the engine's admin actions: run the full
// scheduler, drain pending sends, trigger a one-off reminder, and
// inspect the unreachable queue.
type SchedulerHandler struct {
	service   SchedulerService
	validator *validator.Validate
}

func NewSchedulerHandler(service SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{
		service:   service,
		validator: validator.New(),
	}
}

// RunScheduler handles POST /api/v1/scheduler/run
func (h *SchedulerHandler) RunScheduler(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunScheduler(r.Context())
	if err != nil {
		if errors.Is(err, customError.ErrSchedulerLocked) {
			// Contention, not failure: another run holds the lock
			response.Conflict(w, "Scheduler run already in progress", err)
			return
		}
		response.InternalServerError(w, "Scheduler run failed", err)
		return
	}

	response.Success(w, result)
}

// SendPending handles POST /api/v1/scheduler/send-pending
func (h *SchedulerHandler) SendPending(w http.ResponseWriter, r *http.Request) {
	sent, err := h.service.SendPendingMessages(r.Context())
	if err != nil {
		response.InternalServerError(w, "Dispatch failed", err)
		return
	}

	response.Success(w, &domain.SchedulerRunResult{Sent: sent})
}

// Trigger handles POST /api/v1/scheduler/trigger
func (h *SchedulerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req domain.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		response.BadRequest(w, "Invalid member id", err)
		return
	}

	rtype, err := domain.ParseReminderType(req.ReminderType)
	if err != nil {
		response.BadRequest(w, "Invalid reminder type", err)
		return
	}

	delivered := h.service.TriggerProactiveMessage(r.Context(), memberID, rtype)

	response.Success(w, &domain.TriggerResponse{
		MemberID:     req.MemberID,
		ReminderType: req.ReminderType,
		Delivered:    delivered,
	})
}

// Unreachable handles GET /api/v1/reminders/unreachable
func (h *SchedulerHandler) Unreachable(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.ListUnreachable(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list unreachable reminders", err)
		return
	}

	response.Success(w, &domain.UnreachableResponse{
		Count:     len(reminders),
		Reminders: reminders,
	})
}
