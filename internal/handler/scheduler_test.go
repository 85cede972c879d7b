package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yudhapr/bpjs-reminder-engine/internal/channel"
	"github.com/yudhapr/bpjs-reminder-engine/internal/config"
	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
	"github.com/yudhapr/bpjs-reminder-engine/internal/service"
	customError "github.com/yudhapr/bpjs-reminder-engine/pkg/errors"
	"github.com/yudhapr/bpjs-reminder-engine/tests/mocks"
)

type testEnv struct {
	debtRepo     *mocks.MockDebtRepository
	memberRepo   *mocks.MockMemberRepository
	reminderRepo *mocks.MockReminderRepository
	telegram     *mocks.MockSender
	router       *mux.Router
}

func newTestEnv() *testEnv {
	env := &testEnv{
		debtRepo:     &mocks.MockDebtRepository{},
		memberRepo:   &mocks.MockMemberRepository{},
		reminderRepo: &mocks.MockReminderRepository{},
		telegram:     mocks.NewMockSender(domain.PlatformTelegram),
	}

	cfg := &config.Config{
		Scheduler: config.SchedulerConfig{Timezone: "Asia/Jakarta", LockTTL: "10m"},
		Business: config.BusinessConfig{
			SendWindowHour:     9,
			DispatchBatchSize:  50,
			MaxSendAttempts:    3,
			UpcomingWindowDays: 7,
			OverdueCadenceDays: 3,
			LateFee:            "5000",
			UnreachableAge:     "168h",
		},
	}

	svc := service.NewSchedulerService(
		env.debtRepo,
		env.memberRepo,
		env.reminderRepo,
		channel.NewRegistry(env.telegram),
		nil,
		cfg,
	)
	h := NewSchedulerHandler(svc)

	env.router = mux.NewRouter()
	api := env.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/scheduler/run", h.RunScheduler).Methods("POST")
	api.HandleFunc("/scheduler/send-pending", h.SendPending).Methods("POST")
	api.HandleFunc("/scheduler/trigger", h.Trigger).Methods("POST")
	api.HandleFunc("/reminders/unreachable", h.Unreachable).Methods("GET")

	return env
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRunSchedulerEndpoint(t *testing.T) {
	env := newTestEnv()

	env.debtRepo.On("ListActiveDueWithin", mock.Anything, mock.Anything, 7).Return([]*domain.Debt{}, nil)
	env.debtRepo.On("ListActiveOverdue", mock.Anything, mock.Anything).Return([]*domain.Debt{}, nil)
	env.reminderRepo.On("ListPendingDue", mock.Anything, mock.Anything, 50).Return([]*domain.Reminder{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/run", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(0), data["generated"])
	assert.Equal(t, float64(0), data["sent"])
}

func TestRunSchedulerEndpoint_LockHeldReturnsConflict(t *testing.T) {
	// Contention with a concurrent run is not a failure: the caller
	// should see 409, not 500.
	svc := &mocks.MockSchedulerService{}
	svc.On("RunScheduler", mock.Anything).Return(nil, customError.WrapSchedulerLocked())

	h := NewSchedulerHandler(svc)
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/scheduler/run", h.RunScheduler).Methods("POST")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestSendPendingEndpoint(t *testing.T) {
	env := newTestEnv()
	memberID := uuid.New()
	reminder := &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     memberID,
		ReminderType: domain.ReminderType1Day,
		Content:      "Halo, iuran Anda jatuh tempo besok.",
		Status:       domain.ReminderStatusPending,
	}

	env.reminderRepo.On("ListPendingDue", mock.Anything, mock.Anything, 50).Return([]*domain.Reminder{reminder}, nil)
	env.memberRepo.On("GetLinkedAccount", mock.Anything, memberID).Return(&domain.LinkedAccount{
		MemberID: memberID, Platform: domain.PlatformTelegram, Address: "123",
	}, nil)
	env.telegram.On("SendText", mock.Anything, "123", reminder.Content).Return(nil)
	env.reminderRepo.On("MarkSent", mock.Anything, reminder.ID, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/send-pending", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["sent"])
}

func TestTriggerEndpoint_Success(t *testing.T) {
	env := newTestEnv()
	memberID := uuid.New()
	debt := &domain.Debt{
		ID:       uuid.New(),
		MemberID: memberID,
		Amount:   decimal.NewFromInt(150000),
		DueDate:  time.Now().AddDate(0, 0, 5),
		Status:   domain.DebtStatusActive,
	}

	env.memberRepo.On("GetByID", mock.Anything, memberID).Return(&domain.Member{
		ID: memberID, BPJSNumber: "0001234567890", Name: "Budi Santoso",
	}, nil)
	env.debtRepo.On("GetLatestByMember", mock.Anything, memberID).Return(debt, nil)
	env.reminderRepo.On("Create", mock.Anything, mock.Anything).Return(true, nil)
	env.memberRepo.On("GetLinkedAccount", mock.Anything, memberID).Return(&domain.LinkedAccount{
		MemberID: memberID, Platform: domain.PlatformTelegram, Address: "123",
	}, nil)
	env.telegram.On("SendText", mock.Anything, "123", mock.Anything).Return(nil)
	env.reminderRepo.On("MarkSent", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	payload, _ := json.Marshal(domain.TriggerRequest{
		MemberID:     memberID.String(),
		ReminderType: "reminder_3d",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/trigger", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["delivered"])
	assert.Equal(t, memberID.String(), data["member_id"])
}

func TestTriggerEndpoint_InvalidBody(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/trigger", bytes.NewBufferString(`{`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerEndpoint_UnknownReminderType(t *testing.T) {
	env := newTestEnv()

	payload, _ := json.Marshal(domain.TriggerRequest{
		MemberID:     uuid.New().String(),
		ReminderType: "reminder_14d",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/trigger", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnreachableEndpoint(t *testing.T) {
	env := newTestEnv()
	stale := &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     uuid.New(),
		ReminderType: domain.ReminderType7Days,
		Content:      "Halo, iuran Anda akan jatuh tempo.",
		Status:       domain.ReminderStatusPending,
	}

	env.reminderRepo.On("ListStalePending", mock.Anything, mock.Anything).Return([]*domain.Reminder{stale}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reminders/unreachable", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
}
