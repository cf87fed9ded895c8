package alerts

import (
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2/log"

	"github.com/submate-app/SubMate/app/models"
	"github.com/submate-app/SubMate/app/repository"
	"github.com/submate-app/SubMate/internal/pkg/mail"
	"github.com/submate-app/SubMate/internal/pkg/subscription"
)

// Notifier turns lifecycle events and reminder tasks into emails to the
// subscription owner.
type Notifier struct {
	users  repository.UserRepository
	mailer mail.Mailer
}

func NewNotifier(users repository.UserRepository, mailer mail.Mailer) *Notifier {
	return &Notifier{users: users, mailer: mailer}
}

// Dispatch delivers one email per lifecycle event, best-effort. The state
// change behind each event is already committed, so delivery failures are
// logged and swallowed rather than surfaced to the caller.
func (n *Notifier) Dispatch(events []subscription.Event) {
	for _, event := range events {
		if err := n.send(event); err != nil {
			log.Errorf("[Alerts] Failed to deliver %s notification for subscription %d: %v",
				event.Kind, event.Subscription.ID, err)
		}
	}
}

func (n *Notifier) send(event subscription.Event) error {
	user, err := n.users.GetByID(event.Subscription.UserID)
	if err != nil {
		return fmt.Errorf("owner lookup: %w", err)
	}

	// Message strings render as raw HTML so the <strong> markup survives;
	// the service name is user input and must be escaped before it gets there.
	name := event.Subscription.ServiceName
	safeName := template.HTMLEscapeString(name)
	var subject, title, message string

	switch event.Kind {
	case subscription.EventCreated:
		subject = "New Subscription Registered"
		title = fmt.Sprintf("New Subscription: %s", name)
		message = "You have successfully registered a new subscription. We will remind you before your next payment."
	case subscription.EventEdited:
		subject = fmt.Sprintf("Subscription Update - %s", name)
		title = "Subscription Updated"
		message = fmt.Sprintf("The details of your <strong>%s</strong> subscription have been updated successfully.", safeName)
	case subscription.EventDeactivated:
		subject = fmt.Sprintf("Subscription Deactivated - %s", name)
		title = "Subscription Paused"
		message = fmt.Sprintf("You have disabled reminders for <strong>%s</strong>. You will not receive payment alerts for this service until you reactivate it.", safeName)
	case subscription.EventActivated:
		subject = fmt.Sprintf("Subscription Reactivated - %s", name)
		title = "Subscription Reactivated"
		message = fmt.Sprintf("You have reactivated reminders for <strong>%s</strong>. We will remind you before your next payment.", safeName)
	case subscription.EventDeleted:
		subject = fmt.Sprintf("Subscription Deleted - %s", name)
		title = "Subscription Deleted"
		message = fmt.Sprintf("You have permanently deleted your <strong>%s</strong> subscription. You will no longer receive notifications for this service.", safeName)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}

	return n.mailer.Send(user.Email, subject, renderEmail(title, message))
}

// SendWelcome greets a freshly registered user. Called best-effort after
// registration; a failure here never fails the signup.
func (n *Notifier) SendWelcome(user *models.User) error {
	title := fmt.Sprintf("Welcome to SubMate, %s!", user.Name)
	message := "Thanks for joining SubMate. You now have full control of your subscriptions in one place. Start by registering your first subscription."
	return n.mailer.Send(user.Email, "Welcome to SubMate", renderEmail(title, message))
}

// SendReminder notifies the owner about an upcoming payment. Unlike Dispatch,
// the error is returned so the caller can record the delivery outcome.
func (n *Notifier) SendReminder(sub models.Subscription, daysRemaining int) error {
	user, err := n.users.GetByID(sub.UserID)
	if err != nil {
		return fmt.Errorf("owner lookup: %w", err)
	}

	urgency := "Reminder:"
	if daysRemaining <= 3 {
		urgency = "Attention!"
	}
	title := fmt.Sprintf("%s Upcoming payment for %s", urgency, sub.ServiceName)
	message := fmt.Sprintf(
		"Your payment of <strong>$%s</strong> for <strong>%s</strong> is due in <strong>%d days</strong>. Make sure you have funds available.",
		sub.Cost.StringFixed(2), template.HTMLEscapeString(sub.ServiceName), daysRemaining,
	)

	subject := fmt.Sprintf("Payment Reminder: %s", sub.ServiceName)
	return n.mailer.Send(user.Email, subject, renderEmail(title, message))
}
