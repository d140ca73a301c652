package domain

// NotificationChannel preferred way to reach a user
type NotificationChannel string

const (
	ChannelNotSet   NotificationChannel = "not_set"
	ChannelDisabled NotificationChannel = "disabled"
	ChannelEmail    NotificationChannel = "email"
	ChannelPush     NotificationChannel = "push"
)

// User account as seen by the reservation engine
type User struct {
	ID                  string
	Email               string
	FirstName           string
	Company             string
	IsAdmin             bool // company admin
	IsCarwashAdmin      bool
	NotificationChannel NotificationChannel
	CalendarIntegration bool
}

// CanActFor reports whether u may manage reservations owned by target
func (u *User) CanActFor(target *User) bool {
	switch {
	case u.ID == target.ID:
		return true
	case u.IsCarwashAdmin:
		return true
	case u.IsAdmin:
		return u.Company == target.Company
	default:
		return false
	}
}
