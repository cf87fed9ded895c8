package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/billingcycle"
)

// Sender delivers one reminder email. Satisfied by alerts.Notifier.
type Sender interface {
	SendReminder(sub models.Subscription, daysRemaining int) error
}

// Worker is the daily reminder batch job. Run executes two strictly
// sequential phases: generation enqueues pending tasks for every active
// subscription whose payment is 15, 7 or 3 days out, and drain sends the
// pending tasks that are due. Per-item failures are logged and isolated;
// Run only returns an error when a phase-level query fails.
type Worker struct {
	repos  *repository.Repositories
	sender Sender
	now    func() time.Time
}

func NewWorker(repos *repository.Repositories, sender Sender) *Worker {
	return &Worker{repos: repos, sender: sender, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

func (w *Worker) today() time.Time {
	t := w.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Run executes one full generate-then-drain cycle.
func (w *Worker) Run() error {
	generated, err := w.generate()
	if err != nil {
		return fmt.Errorf("reminder generation failed: %w", err)
	}
	sent, failed, err := w.drain()
	if err != nil {
		return fmt.Errorf("reminder drain failed: %w", err)
	}
	log.Infof("[ReminderWorker] Run complete: %d generated, %d sent, %d failed", generated, sent, failed)
	return nil
}

// generate is phase A: scan active subscriptions and enqueue one pending
// task per matching threshold. The existence check before each insert keeps
// repeated runs on the same day idempotent.
func (w *Worker) generate() (int, error) {
	today := w.today()

	subs, err := w.repos.Subscription.ListActive()
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, sub := range subs {
		next, ok := w.nextPaymentFor(&sub, today)
		if !ok {
			continue
		}

		days := billingcycle.DaysUntil(today, next)
		alertType, ok := models.AlertTypeForDays(days)
		if !ok {
			continue
		}

		exists, err := w.repos.ReminderTask.Exists(sub.ID, alertType, today)
		if err != nil {
			log.Errorf("[ReminderWorker] Existence check failed for subscription %d: %v", sub.ID, err)
			continue
		}
		if exists {
			continue
		}

		task := &models.ReminderTask{
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			AlertType:      alertType,
			ScheduledFor:   today,
			Status:         models.TaskStatusPending,
		}
		if err := w.repos.ReminderTask.Create(task); err != nil {
			log.Errorf("[ReminderWorker] Failed to enqueue %s for subscription %d: %v", alertType, sub.ID, err)
			continue
		}
		log.Infof("[ReminderWorker] Enqueued %s for subscription %d (%s)", alertType, sub.ID, sub.ServiceName)
		generated++
	}
	return generated, nil
}

// nextPaymentFor returns the subscription's next payment date, repairing the
// stored value when it is missing but the billing fields still allow
// recomputation. An active row without a next payment date should not exist;
// when one shows up the worker fixes it instead of silently skipping forever.
func (w *Worker) nextPaymentFor(sub *models.Subscription, today time.Time) (time.Time, bool) {
	if sub.NextPaymentAt != nil {
		return *sub.NextPaymentAt, true
	}
	if sub.BillingDay == nil {
		log.Warnf("[ReminderWorker] Active subscription %d has no next payment date and no billing day, skipping", sub.ID)
		return time.Time{}, false
	}

	log.Warnf("[ReminderWorker] Active subscription %d has no next payment date, recomputing", sub.ID)
	freq := billingcycle.Frequency(sub.Frequency)
	monthVal := 0
	if sub.BillingMonth != nil {
		monthVal = *sub.BillingMonth
	}
	last, err := billingcycle.InitialLastPayment(freq, *sub.BillingDay, monthVal, today)
	if err != nil {
		log.Errorf("[ReminderWorker] Cannot recompute dates for subscription %d: %v", sub.ID, err)
		return time.Time{}, false
	}
	next, err := billingcycle.NextPayment(freq, *sub.BillingDay, last)
	if err != nil {
		log.Errorf("[ReminderWorker] Cannot recompute dates for subscription %d: %v", sub.ID, err)
		return time.Time{}, false
	}

	err = w.repos.Subscription.Update(sub.ID, map[string]interface{}{
		"last_payment_at": last,
		"next_payment_at": next,
	})
	if err != nil {
		log.Errorf("[ReminderWorker] Failed to persist repaired dates for subscription %d: %v", sub.ID, err)
		return time.Time{}, false
	}
	return next, true
}

// drain is phase B: send every pending task that is due. Days-remaining is
// recomputed at send time rather than derived from the alert type, since the
// queue may lag behind by a day or more.
func (w *Worker) drain() (sent, failed int, err error) {
	today := w.today()

	tasks, err := w.repos.ReminderTask.ListPendingDue(today)
	if err != nil {
		return 0, 0, err
	}

	for _, task := range tasks {
		if sendErr := w.process(task, today); sendErr != nil {
			log.Errorf("[ReminderWorker] Task %d failed: %v", task.ID, sendErr)
			if markErr := w.repos.ReminderTask.MarkFailed(task.ID); markErr != nil {
				log.Errorf("[ReminderWorker] Failed to mark task %d failed: %v", task.ID, markErr)
			}
			failed++
			continue
		}
		if markErr := w.repos.ReminderTask.MarkSent(task.ID); markErr != nil {
			log.Errorf("[ReminderWorker] Failed to mark task %d sent: %v", task.ID, markErr)
		}
		sent++
	}
	return sent, failed, nil
}

func (w *Worker) process(task models.ReminderTask, today time.Time) error {
	sub, err := w.repos.Subscription.GetByIDAndUser(task.SubscriptionID, task.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("subscription %d no longer exists", task.SubscriptionID)
		}
		return err
	}
	if !sub.IsActive() {
		return fmt.Errorf("subscription %d is inactive", sub.ID)
	}
	if sub.NextPaymentAt == nil {
		return fmt.Errorf("subscription %d has no next payment date", sub.ID)
	}

	days := billingcycle.DaysUntil(today, *sub.NextPaymentAt)
	return w.sender.SendReminder(*sub, days)
}
