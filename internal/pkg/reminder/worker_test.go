package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/submate-app/SubMate/app/models"
	"github.com/submate-app/SubMate/app/repository"
)

type fakeSubRepo struct {
	subs map[uint]*models.Subscription
}

func (f *fakeSubRepo) Create(sub *models.Subscription) error { panic("not used") }

func (f *fakeSubRepo) GetByIDAndUser(id, userID uint) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok || sub.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubRepo) ListByUser(userID uint) ([]models.Subscription, error) { panic("not used") }

func (f *fakeSubRepo) ListActive() ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == models.SubscriptionStatusActive {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeSubRepo) Update(id uint, fields map[string]interface{}) error {
	sub, ok := f.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["last_payment_at"]; ok {
		sub.LastPaymentAt = v.(time.Time)
	}
	if v, ok := fields["next_payment_at"]; ok {
		t := v.(time.Time)
		sub.NextPaymentAt = &t
	}
	return nil
}

func (f *fakeSubRepo) Delete(id uint) error { panic("not used") }

func (f *fakeSubRepo) FindByNormalizedName(userID uint, normalized string) (*models.Subscription, error) {
	panic("not used")
}

type fakeTaskRepo struct {
	nextID uint
	tasks  []*models.ReminderTask
}

func (f *fakeTaskRepo) Create(task *models.ReminderTask) error {
	f.nextID++
	task.ID = f.nextID
	cp := *task
	f.tasks = append(f.tasks, &cp)
	return nil
}

func (f *fakeTaskRepo) Exists(subscriptionID uint, alertType string, scheduledFor time.Time) (bool, error) {
	for _, t := range f.tasks {
		if t.SubscriptionID == subscriptionID && t.AlertType == alertType && t.ScheduledFor.Equal(scheduledFor) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaskRepo) ListPendingDue(asOf time.Time) ([]models.ReminderTask, error) {
	var out []models.ReminderTask
	for _, t := range f.tasks {
		if t.Status == models.TaskStatusPending && !t.ScheduledFor.After(asOf) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) MarkSent(id uint) error   { return f.setStatus(id, models.TaskStatusSent) }
func (f *fakeTaskRepo) MarkFailed(id uint) error { return f.setStatus(id, models.TaskStatusFailed) }

func (f *fakeTaskRepo) setStatus(id uint, status string) error {
	for _, t := range f.tasks {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTaskRepo) byID(id uint) *models.ReminderTask {
	for _, t := range f.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type sentReminder struct {
	subscriptionID uint
	days           int
}

type fakeSender struct {
	sent    []sentReminder
	failFor map[uint]bool
}

func (f *fakeSender) SendReminder(sub models.Subscription, daysRemaining int) error {
	if f.failFor[sub.ID] {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, sentReminder{subscriptionID: sub.ID, days: daysRemaining})
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activeSub(id uint, name string, next time.Time) *models.Subscription {
	day := next.Day()
	n := next
	return &models.Subscription{
		ID:            id,
		UserID:        1,
		ServiceName:   name,
		Cost:          decimal.NewFromFloat(9.99),
		Status:        models.SubscriptionStatusActive,
		Frequency:     models.FrequencyMonthly,
		PaymentMethod: models.PaymentMethodVisa,
		BillingDay:    &day,
		NextPaymentAt: &n,
	}
}

func newTestWorker(today time.Time, subs *fakeSubRepo) (*Worker, *fakeTaskRepo, *fakeSender) {
	tasks := &fakeTaskRepo{}
	sender := &fakeSender{failFor: map[uint]bool{}}
	repos := &repository.Repositories{Subscription: subs, ReminderTask: tasks}
	w := NewWorker(repos, sender).WithClock(func() time.Time { return today })
	return w, tasks, sender
}

func TestRunEnqueuesAtThresholdsOnly(t *testing.T) {
	today := date(2024, time.March, 1)
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{
		1: activeSub(1, "Netflix", date(2024, time.March, 16)), // 15 days
		2: activeSub(2, "Spotify", date(2024, time.March, 8)),  // 7 days
		3: activeSub(3, "iCloud", date(2024, time.March, 4)),   // 3 days
		4: activeSub(4, "Gym", date(2024, time.March, 11)),     // 10 days, no alert
	}}
	w, tasks, sender := newTestWorker(today, subs)

	require.NoError(t, w.Run())

	require.Len(t, tasks.tasks, 3)
	byType := map[string]uint{}
	for _, task := range tasks.tasks {
		byType[task.AlertType] = task.SubscriptionID
		assert.Equal(t, today, task.ScheduledFor)
		assert.Equal(t, models.TaskStatusSent, task.Status)
	}
	assert.Equal(t, uint(1), byType[models.AlertReminder15])
	assert.Equal(t, uint(2), byType[models.AlertReminder7])
	assert.Equal(t, uint(3), byType[models.AlertReminder3])

	assert.Len(t, sender.sent, 3)
}

func TestRunIsIdempotentWithinOneDay(t *testing.T) {
	today := date(2024, time.March, 1)
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{
		1: activeSub(1, "Netflix", date(2024, time.March, 8)),
	}}
	w, tasks, sender := newTestWorker(today, subs)

	require.NoError(t, w.Run())
	require.NoError(t, w.Run())

	assert.Len(t, tasks.tasks, 1)
	// The second run found the task already sent, so nothing was re-delivered.
	assert.Len(t, sender.sent, 1)
}

func TestRunSkipsInactiveSubscriptions(t *testing.T) {
	today := date(2024, time.March, 1)
	inactive := activeSub(1, "Netflix", date(2024, time.March, 8))
	inactive.Status = models.SubscriptionStatusInactive
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{1: inactive}}
	w, tasks, _ := newTestWorker(today, subs)

	require.NoError(t, w.Run())
	assert.Empty(t, tasks.tasks)
}

func TestRunRepairsMissingNextPaymentDate(t *testing.T) {
	today := date(2024, time.March, 1)
	day := 8
	sub := &models.Subscription{
		ID:            1,
		UserID:        1,
		ServiceName:   "Netflix",
		Cost:          decimal.NewFromFloat(9.99),
		Status:        models.SubscriptionStatusActive,
		Frequency:     models.FrequencyMonthly,
		PaymentMethod: models.PaymentMethodVisa,
		BillingDay:    &day,
		NextPaymentAt: nil,
	}
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{1: sub}}
	w, tasks, sender := newTestWorker(today, subs)

	require.NoError(t, w.Run())

	// Last occurrence of day 8 before March 1 is Feb 8; next is March 8,
	// exactly 7 days out, so the repaired row also gets its reminder.
	require.NotNil(t, sub.NextPaymentAt)
	assert.Equal(t, date(2024, time.March, 8), *sub.NextPaymentAt)
	assert.Equal(t, date(2024, time.February, 8), sub.LastPaymentAt)

	require.Len(t, tasks.tasks, 1)
	assert.Equal(t, models.AlertReminder7, tasks.tasks[0].AlertType)
	assert.Len(t, sender.sent, 1)
}

func TestDrainMarksFailedWithoutAbortingBatch(t *testing.T) {
	today := date(2024, time.March, 1)
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{
		1: activeSub(1, "Netflix", date(2024, time.March, 8)),
		2: activeSub(2, "Spotify", date(2024, time.March, 4)),
	}}
	w, tasks, sender := newTestWorker(today, subs)
	sender.failFor[1] = true

	// The run itself still succeeds; the failure is recorded per task.
	require.NoError(t, w.Run())

	require.Len(t, tasks.tasks, 2)
	for _, task := range tasks.tasks {
		if task.SubscriptionID == 1 {
			assert.Equal(t, models.TaskStatusFailed, task.Status)
		} else {
			assert.Equal(t, models.TaskStatusSent, task.Status)
		}
	}
	require.Len(t, sender.sent, 1)
	assert.Equal(t, uint(2), sender.sent[0].subscriptionID)

	// Failed tasks are terminal: a later run does not retry them.
	sender.failFor = map[uint]bool{}
	require.NoError(t, w.Run())
	assert.Equal(t, models.TaskStatusFailed, tasks.byID(1).Status)
}

func TestDrainFailsTasksForVanishedSubscriptions(t *testing.T) {
	today := date(2024, time.March, 1)
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{}}
	w, tasks, sender := newTestWorker(today, subs)

	// A pending task whose subscription was deleted after generation.
	require.NoError(t, tasks.Create(&models.ReminderTask{
		UserID:         1,
		SubscriptionID: 99,
		AlertType:      models.AlertReminder7,
		ScheduledFor:   today,
		Status:         models.TaskStatusPending,
	}))

	require.NoError(t, w.Run())
	assert.Equal(t, models.TaskStatusFailed, tasks.byID(1).Status)
	assert.Empty(t, sender.sent)
}

func TestDrainRecomputesDaysAtSendTime(t *testing.T) {
	// A task generated two days ago at the 7-day threshold is drained today;
	// the reminder must carry 5 days, not the stale 7.
	generatedOn := date(2024, time.March, 1)
	today := date(2024, time.March, 3)
	subs := &fakeSubRepo{subs: map[uint]*models.Subscription{
		1: activeSub(1, "Netflix", date(2024, time.March, 8)),
	}}
	w, tasks, sender := newTestWorker(today, subs)

	require.NoError(t, tasks.Create(&models.ReminderTask{
		UserID:         1,
		SubscriptionID: 1,
		AlertType:      models.AlertReminder7,
		ScheduledFor:   generatedOn,
		Status:         models.TaskStatusPending,
	}))

	require.NoError(t, w.Run())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, 5, sender.sent[0].days)
	assert.Equal(t, models.TaskStatusSent, tasks.byID(1).Status)
}
