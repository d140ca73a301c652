package domain

import "time"

// Email message handed to the mail queue
type Email struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	DueAt   time.Time `json:"dueAt"`
}

// PushNotification payload for the push gateway
type PushNotification struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Tag     string `json:"tag"`
	URL     string `json:"url,omitempty"`
	Private bool   `json:"requireInteraction"`
}
