package notifications

import (
	"fmt"
	"strings"

	"github.com/mark-szabo/carwash/internal/domain"
)

// message одно уведомление во всех представлениях
type message struct {
	subject string
	body    string
	push    domain.PushNotification
	// completion - письмо откладывается, чтобы склеить быстрые смены состояния
	completion bool
}

func greeting(owner *domain.User) string {
	if owner.FirstName == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", owner.FirstName)
}

func completedMessage(r *domain.Reservation, owner *domain.User) message {
	var body strings.Builder
	body.WriteString(greeting(owner))
	body.WriteString("\n\n")

	subject := "Your car is ready! ✔"
	pushBody := "Your car is ready, you can pick it up."
	if r.Private {
		subject = "Your car is ready! Don't forget to pay 💸"
		pushBody = "Your car is ready. Don't forget to pay at the reception."
		fmt.Fprintf(&body, "your car (%s) is ready. Please pay at the reception before you take the keys.", r.VehiclePlateNumber)
	} else {
		fmt.Fprintf(&body, "your car (%s) is ready.", r.VehiclePlateNumber)
	}

	if r.KeyLockerBoxID != nil && *r.KeyLockerBoxID != "" {
		fmt.Fprintf(&body, "\nYour keys are in the key locker, box %s.", *r.KeyLockerBoxID)
		pushBody += fmt.Sprintf(" Keys: box %s.", *r.KeyLockerBoxID)
	}

	body.WriteString("\n\nThank you for using the carwash!")

	return message{
		subject:    subject,
		body:       body.String(),
		completion: true,
		push: domain.PushNotification{
			Title:   subject,
			Body:    pushBody,
			Tag:     fmt.Sprintf("%d", r.ID),
			URL:     fmt.Sprintf("/reservations/%d", r.ID),
			Private: r.Private,
		},
	}
}

func commentMessage(r *domain.Reservation, owner *domain.User, comment domain.Comment) message {
	subject := "New message from the carwash 💬"
	return message{
		subject: subject,
		body: fmt.Sprintf("%s\n\nthe carwash sent a message about your reservation (%s, %s):\n\n%s",
			greeting(owner), r.VehiclePlateNumber, r.StartDate.UTC().Format(domain.DateFormat), comment.Message),
		push: domain.PushNotification{
			Title: subject,
			Body:  comment.Message,
			Tag:   fmt.Sprintf("%d", r.ID),
			URL:   fmt.Sprintf("/reservations/%d", r.ID),
		},
	}
}
