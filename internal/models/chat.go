package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a two-party thread. The pair is stored normalized
// (UserLowID < UserHighID byte-wise) so the composite unique index gives at
// most one conversation per unordered pair of participants.
type Conversation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserLowID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"user_low_id"`
	UserHighID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"user_high_id"`

	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	UserLow  *User     `gorm:"foreignKey:UserLowID" json:"user_low,omitempty"`
	UserHigh *User     `gorm:"foreignKey:UserHighID" json:"user_high,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// NormalizePair orders two participant IDs into the (low, high) form the
// conversation table stores.
func NormalizePair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OtherParticipant returns the counterpart of userID in the pair.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.UserLowID, c.UserHighID = NormalizePair(c.UserLowID, c.UserHighID)
	return
}

type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:uuid;index;not null" json:"sender_id"`

	Content       string `gorm:"type:text" json:"content"`
	AttachmentURL string `gorm:"type:text" json:"attachment_url,omitempty"`

	IsRead bool       `gorm:"default:false" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
