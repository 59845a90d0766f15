package chat

import (
	"time"

	"gorm.io/datatypes"
)

type Message struct {
	ID             string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ConversationID string         `gorm:"type:uuid;index;not null" json:"conversationId"`
	SenderID       string         `gorm:"type:uuid;not null" json:"senderId"`
	Text           string         `gorm:"type:text" json:"text"`
	Kind           string         `gorm:"type:varchar(20);default:'text'" json:"type"`
	Meta           datatypes.JSON `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string {
	return "chat.messages"
}

// Preview - то, что попадает в Conversation.LastMessage
func (m *Message) Preview() string {
	if m.Kind == "" || m.Kind == "text" {
		return m.Text
	}
	return "[" + m.Kind + "]"
}
