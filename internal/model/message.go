package model

import "time"

// Message is a directed note between two users, optionally about a tag.
type Message struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	TagID      string    `json:"tagId,omitempty"`
	Subject    string    `json:"subject"`
	Body       string    `json:"message"`
	EmailSent  bool      `json:"emailSent"`
	CreatedAt  time.Time `json:"createdAt"`

	// Joined fields (not always populated).
	FromFirstName string `json:"fromFirstName,omitempty"`
	FromLastName  string `json:"fromLastName,omitempty"`
	ItemName      string `json:"itemName,omitempty"`
}
