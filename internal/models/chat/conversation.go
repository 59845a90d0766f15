package chat

import (
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
)

type Conversation struct {
	ID           string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Participants pq.StringArray `gorm:"type:text[];not null" json:"participants"`
	// PairKey - отсортированные id участников через ":", уникален
	PairKey     string    `gorm:"not null;uniqueIndex" json:"-"`
	LastMessage string    `gorm:"type:text;default:''" json:"lastMessage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `gorm:"index" json:"updatedAt"`

	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (Conversation) TableName() string {
	return "chat.conversations"
}

// PairKey is order independent: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Peer возвращает второго участника
func (c *Conversation) Peer(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
