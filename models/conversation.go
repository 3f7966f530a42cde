package models

import "time"

type MessageSender string

const (
	MessageSenderUser      MessageSender = "user"
	MessageSenderAssistant MessageSender = "assistant"
	MessageSenderSystem    MessageSender = "system"
)

// Conversation is a tutor session. UserID is nil for anonymous sessions.
type Conversation struct {
	ID        string                `json:"_id" gorm:"primaryKey;size:191"`
	UserID    *string               `json:"user,omitempty" gorm:"size:191;index"`
	Language  string                `json:"language" gorm:"size:50;default:'auto'"`
	Topic     string                `json:"topic,omitempty" gorm:"size:255"`
	Messages  []ConversationMessage `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// OwnedBy reports whether userID may read or clear the conversation.
func (c *Conversation) OwnedBy(userID string) bool {
	if c.UserID == nil {
		return true
	}
	return *c.UserID == userID
}

type ConversationMessage struct {
	ID             uint          `json:"-" gorm:"primaryKey"`
	ConversationID string        `json:"-" gorm:"not null;size:191;index"`
	Sender         MessageSender `json:"sender" gorm:"not null;size:20"`
	Text           string        `json:"text" gorm:"type:text;not null"`
	Meta           JSONMap       `json:"meta,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}
