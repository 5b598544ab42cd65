package model

import "time"

// Notification - inbox entry (WhatsApp-style message)
type Notification struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Time      string    `json:"time"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
