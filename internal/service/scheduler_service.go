package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yudhapr/bpjs-reminder-engine/internal/channel"
	"github.com/yudhapr/bpjs-reminder-engine/internal/config"
	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
	"github.com/yudhapr/bpjs-reminder-engine/internal/repository"
	"github.com/yudhapr/bpjs-reminder-engine/internal/template"
	customError "github.com/yudhapr/bpjs-reminder-engine/pkg/errors"
	"github.com/yudhapr/bpjs-reminder-engine/pkg/utils"
)

const schedulerLockKey = "scheduler:run_lock"

// SchedulerService is the reminder engine: it generates due reminders
// from the debt ledger and dispatches pending ones through the channel
// adapters. Both phases are also exposed separately for the admin
// surface.
type SchedulerService struct {
	debtRepo     repository.DebtRepository
	memberRepo   repository.MemberRepository
	reminderRepo repository.ReminderRepository
	channels     *channel.Registry
	redis        *redis.Client
	config       *config.Config
	loc          *time.Location

	// now is swappable so window arithmetic is testable
	now func() time.Time
}

func NewSchedulerService(
	debtRepo repository.DebtRepository,
	memberRepo repository.MemberRepository,
	reminderRepo repository.ReminderRepository,
	channels *channel.Registry,
	redis *redis.Client,
	config *config.Config,
) *SchedulerService {
	return &SchedulerService{
		debtRepo:     debtRepo,
		memberRepo:   memberRepo,
		reminderRepo: reminderRepo,
		channels:     channels,
		redis:        redis,
		config:       config,
		loc:          config.GetTimezone(),
		now:          time.Now,
	}
}

// reminderTypeForDays maps days-until-due to its trigger type. Only
// the three discrete points fire; every other distance is silent until
// a later run crosses into a window.
func reminderTypeForDays(days int) (domain.ReminderType, bool) {
	switch days {
	case 7:
		return domain.ReminderType7Days, true
	case 3:
		return domain.ReminderType3Days, true
	case 1:
		return domain.ReminderType1Day, true
	}
	return "", false
}

// GenerateDueReminders scans upcoming and overdue debts and
// materializes the reminders that should now exist. Returns the count
// created. A bad row never fails the run; only the ledger queries
// propagate errors.
func (s *SchedulerService) GenerateDueReminders(ctx context.Context) (int, error) {
	now := s.now()
	created := 0

	// The ledger scans take day-grain bounds so the window math below,
	// which works in calendar days, sees every debt it could fire on
	// regardless of the hour either the run or the due date lands on.
	dayStart := utils.BeginningOfDay(now, s.loc)

	upcoming, err := s.debtRepo.ListActiveDueWithin(ctx, dayStart, s.config.Business.UpcomingWindowDays)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	for _, debt := range upcoming {
		rtype, ok := reminderTypeForDays(utils.DaysBetween(now, debt.DueDate, s.loc))
		if !ok {
			continue
		}

		if s.generateDueWindowReminder(ctx, debt, rtype, now) {
			created++
		}
	}

	overdue, err := s.debtRepo.ListActiveOverdue(ctx, dayStart)
	if err != nil {
		return created, customError.WrapDatabaseError(err)
	}

	for _, debt := range overdue {
		if s.generateOverdueReminder(ctx, debt, now) {
			created++
		}
	}

	return created, nil
}

func (s *SchedulerService) generateDueWindowReminder(ctx context.Context, debt *domain.Debt, rtype domain.ReminderType, now time.Time) bool {
	exists, err := s.reminderRepo.Exists(ctx, debt.MemberID, rtype, debt.ID)
	if err != nil {
		log.Printf("Error checking existing %s reminder for member %s: %v", rtype, debt.MemberID, err)
		return false
	}
	if exists {
		return false
	}

	member, err := s.memberRepo.GetByID(ctx, debt.MemberID)
	if err != nil {
		log.Printf("Error loading member %s for debt %s: %v", debt.MemberID, debt.ID, err)
		return false
	}

	content, err := template.Render(rtype, template.Params{
		Name:     member.Name,
		Amount:   debt.TotalOwed(),
		DueDate:  debt.DueDate,
		Location: s.loc,
	})
	if err != nil {
		log.Printf("Error rendering %s reminder for member %s: %v", rtype, debt.MemberID, err)
		return false
	}

	reminder := &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     debt.MemberID,
		DebtID:       uuid.NullUUID{UUID: debt.ID, Valid: true},
		ReminderType: rtype,
		// Due-window reminders batch into the fixed daily send window
		// no matter what hour generation ran
		ScheduledAt: utils.AtHour(now, s.config.Business.SendWindowHour, s.loc),
		Content:     content,
		Status:      domain.ReminderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	inserted, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		log.Printf("Error creating %s reminder for member %s: %v", rtype, debt.MemberID, err)
		return false
	}

	return inserted
}

func (s *SchedulerService) generateOverdueReminder(ctx context.Context, debt *domain.Debt, now time.Time) bool {
	cadence := s.config.Business.OverdueCadenceDays

	daysOverdue := utils.DaysBetween(debt.DueDate, now, s.loc)
	if daysOverdue <= 0 || daysOverdue%cadence != 0 {
		return false
	}

	last, err := s.reminderRepo.LastOverdueAt(ctx, debt.MemberID)
	if err != nil {
		log.Printf("Error checking last overdue reminder for member %s: %v", debt.MemberID, err)
		return false
	}
	if last != nil && now.Sub(*last) < time.Duration(cadence)*24*time.Hour {
		return false
	}

	// First crossing flips the debt to overdue and applies the late
	// fee; the update is a no-op on later cadence hits.
	if err := s.debtRepo.MarkOverdue(ctx, debt.ID, s.config.GetLateFee()); err != nil {
		log.Printf("Error marking debt %s overdue: %v", debt.ID, err)
		return false
	}

	member, err := s.memberRepo.GetByID(ctx, debt.MemberID)
	if err != nil {
		log.Printf("Error loading member %s for debt %s: %v", debt.MemberID, debt.ID, err)
		return false
	}

	amount := debt.Amount
	if debt.LateFee.IsZero() {
		amount = amount.Add(s.config.GetLateFee())
	} else {
		amount = amount.Add(debt.LateFee)
	}

	content, err := template.Render(domain.ReminderTypeOverdue, template.Params{
		Name:        member.Name,
		Amount:      amount,
		DaysOverdue: daysOverdue,
		Location:    s.loc,
	})
	if err != nil {
		log.Printf("Error rendering overdue reminder for member %s: %v", debt.MemberID, err)
		return false
	}

	reminder := &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     debt.MemberID,
		DebtID:       uuid.NullUUID{UUID: debt.ID, Valid: true},
		ReminderType: domain.ReminderTypeOverdue,
		// Overdue nags go out immediately, not at the send window
		ScheduledAt: now,
		Content:     content,
		Status:      domain.ReminderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	inserted, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		log.Printf("Error creating overdue reminder for member %s: %v", debt.MemberID, err)
		return false
	}

	return inserted
}

// SendPendingMessages drains pending reminders whose scheduled time
// has passed, bounded by the dispatch batch size. Returns the count
// successfully sent. One reminder's failure never aborts the batch.
func (s *SchedulerService) SendPendingMessages(ctx context.Context) (int, error) {
	now := s.now()

	pending, err := s.reminderRepo.ListPendingDue(ctx, now, s.config.Business.DispatchBatchSize)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	for _, reminder := range pending {
		if s.dispatch(ctx, reminder) {
			sent++
		}
	}

	return sent, nil
}

// dispatch attempts delivery of a single reminder and records the
// outcome. Reports whether the reminder was sent.
func (s *SchedulerService) dispatch(ctx context.Context, reminder *domain.Reminder) bool {
	account, err := s.memberRepo.GetLinkedAccount(ctx, reminder.MemberID)
	if err != nil {
		log.Printf("Error resolving linked account for member %s: %v", reminder.MemberID, err)
		return false
	}
	if account == nil {
		// No channel to reach the member on. The reminder stays
		// pending and surfaces in the unreachable queue once stale.
		log.Printf("Skipping reminder %s: member %s has no linked account", reminder.ID, reminder.MemberID)
		return false
	}

	sender, ok := s.channels.Resolve(account.Platform)
	if !ok {
		log.Printf("Skipping reminder %s: %v", reminder.ID, customError.WrapUnsupportedPlatform(account.Platform))
		return false
	}

	if err := sender.SendText(ctx, account.Address, reminder.Content); err != nil {
		log.Printf("Reminder %s: %v", reminder.ID, customError.WrapSendFailed(account.Platform, err))
		s.recordFailure(ctx, reminder)
		return false
	}

	if err := s.reminderRepo.MarkSent(ctx, reminder.ID, s.now()); err != nil {
		log.Printf("Error marking reminder %s sent: %v", reminder.ID, err)
		return false
	}

	return true
}

func (s *SchedulerService) recordFailure(ctx context.Context, reminder *domain.Reminder) {
	count, err := s.reminderRepo.IncrementRetry(ctx, reminder.ID)
	if err != nil {
		log.Printf("Error incrementing retry count for reminder %s: %v", reminder.ID, err)
		return
	}

	if count >= s.config.Business.MaxSendAttempts {
		if err := s.reminderRepo.MarkFailed(ctx, reminder.ID); err != nil {
			log.Printf("Error marking reminder %s failed: %v", reminder.ID, err)
		}
	}
}

// RunScheduler runs generation then dispatch as one coordinated run.
// The two phases share no transaction; pending reminders are the
// recovery checkpoint if the process dies in between.
func (s *SchedulerService) RunScheduler(ctx context.Context) (*domain.SchedulerRunResult, error) {
	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, schedulerLockKey, 1, s.config.GetLockTTL()).Result()
		if err != nil {
			// A broken lock store should not stop reminders going
			// out; the storage unique index still prevents duplicates.
			log.Printf("Scheduler lock unavailable, continuing without it: %v", err)
		} else if !acquired {
			return nil, customError.WrapSchedulerLocked()
		} else {
			defer s.redis.Del(context.WithoutCancel(ctx), schedulerLockKey)
		}
	}

	generated, err := s.GenerateDueReminders(ctx)
	if err != nil {
		return nil, err
	}

	sent, err := s.SendPendingMessages(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SchedulerRunResult{Generated: generated, Sent: sent}, nil
}

// TriggerProactiveMessage builds and immediately dispatches one
// reminder for a member, outside the normal windows. Used by the admin
// surface for manual testing; any failure comes back as false, never
// an error.
func (s *SchedulerService) TriggerProactiveMessage(ctx context.Context, memberID uuid.UUID, rtype domain.ReminderType) bool {
	now := s.now()

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		log.Printf("Trigger: error loading member %s: %v", memberID, err)
		return false
	}

	debt, err := s.debtRepo.GetLatestByMember(ctx, memberID)
	if err != nil {
		log.Printf("Trigger: no debt found for member %s: %v", memberID, err)
		return false
	}

	params := template.Params{
		Name:     member.Name,
		Amount:   debt.TotalOwed(),
		DueDate:  debt.DueDate,
		Location: s.loc,
	}
	if rtype == domain.ReminderTypeOverdue {
		params.DaysOverdue = utils.DaysBetween(debt.DueDate, now, s.loc)
	}

	content, err := template.Render(rtype, params)
	if err != nil {
		log.Printf("Trigger: error rendering %s for member %s: %v", rtype, memberID, err)
		return false
	}

	reminder := &domain.Reminder{
		ID:           uuid.New(),
		MemberID:     memberID,
		DebtID:       uuid.NullUUID{UUID: debt.ID, Valid: true},
		ReminderType: rtype,
		ScheduledAt:  now,
		Content:      content,
		Status:       domain.ReminderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	inserted, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		log.Printf("Trigger: error creating reminder for member %s: %v", memberID, err)
		return false
	}
	if !inserted {
		log.Printf("Trigger: %s reminder already exists for member %s", rtype, memberID)
		return false
	}

	return s.dispatch(ctx, reminder)
}

// ListUnreachable returns pending reminders old enough that delivery
// has evidently never been possible, for operator review.
func (s *SchedulerService) ListUnreachable(ctx context.Context) ([]*domain.Reminder, error) {
	cutoff := s.now().Add(-s.config.GetUnreachableAge())

	reminders, err := s.reminderRepo.ListStalePending(ctx, cutoff)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return reminders, nil
}
