package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/realtime"
)

type ChatHandler struct {
	DB       *gorm.DB
	Notifier *realtime.Notifier
}

func NewChatHandler(db *gorm.DB, notifier *realtime.Notifier) *ChatHandler {
	return &ChatHandler{DB: db, Notifier: notifier}
}

type StartConversationReq struct {
	RecipientID string `json:"recipient_id"`
}

// StartConversation finds or creates the one conversation for the unordered
// {caller, recipient} pair. Lookup-then-create is the fast path; the unique
// index on the normalized pair closes the race, in which case the existing
// row is re-read.
func (h *ChatHandler) StartConversation(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var req StartConversationReq
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.RecipientID) == "" {
		return fail(c, 400, "recipient_id is required")
	}

	recipientUUID, err := uuid.Parse(strings.TrimSpace(req.RecipientID))
	if err != nil {
		return fail(c, 400, "Invalid recipient ID")
	}

	if recipientUUID == userUUID {
		return fail(c, 400, "Cannot start a conversation with yourself")
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", recipientUUID).Error; err != nil {
		return fail(c, 404, "Recipient not found")
	}

	low, high := models.NormalizePair(userUUID, recipientUUID)

	var conv models.Conversation
	err = h.DB.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conv).Error

	created := false
	if err == gorm.ErrRecordNotFound {
		conv = models.Conversation{
			UserLowID:     low,
			UserHighID:    high,
			LastMessageAt: time.Now(),
		}
		if createErr := h.DB.Create(&conv).Error; createErr != nil {
			// Lost the race; the winner's row is the conversation.
			if findErr := h.DB.Where("user_low_id = ? AND user_high_id = ?", low, high).
				First(&conv).Error; findErr != nil {
				log.Println("Error creating conversation:", createErr)
				return fail(c, 500, "Failed to create conversation")
			}
		} else {
			created = true
		}
	} else if err != nil {
		log.Println("Error fetching conversation:", err)
		return fail(c, 500, "Failed to fetch conversation")
	}

	status := 200
	if created {
		status = 201
	}
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"created": created,
		"data":    conv,
	})
}

type MessageOut struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessageOut(m *models.Message) MessageOut {
	return MessageOut{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Content:        m.Content,
		AttachmentURL:  m.AttachmentURL,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

type ConversationOut struct {
	ID            string      `json:"id"`
	ParticipantID string      `json:"participant_id"` // the other party
	LastMessageAt time.Time   `json:"last_message_at"`
	UnreadCount   int64       `json:"unread_count"`
	Participant   *UserMini   `json:"participant,omitempty"`
	LastMessage   *MessageOut `json:"last_message,omitempty"`
}

type UserMini struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// GetConversations returns the caller's conversations, most recent first.
func (h *ChatHandler) GetConversations(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	var convs []models.Conversation
	if err := h.DB.
		Preload("UserLow").
		Preload("UserHigh").
		Where("user_low_id = ? OR user_high_id = ?", userUUID, userUUID).
		Order("last_message_at DESC").
		Find(&convs).Error; err != nil {
		log.Println("Error fetching conversations:", err)
		return fail(c, 500, "Failed to fetch conversations")
	}

	out := make([]ConversationOut, 0, len(convs))
	for _, conv := range convs {
		var unreadCount int64
		h.DB.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conv.ID, userUUID, false).
			Count(&unreadCount)

		var lastPtr *MessageOut
		var last models.Message
		if err := h.DB.
			Where("conversation_id = ?", conv.ID).
			Order("created_at DESC").
			Limit(1).
			First(&last).Error; err == nil {
			m := toMessageOut(&last)
			lastPtr = &m
		}

		other := conv.OtherParticipant(userUUID)
		var otherMini *UserMini
		otherUser := conv.UserLow
		if conv.UserHighID == other {
			otherUser = conv.UserHigh
		}
		if otherUser != nil {
			otherMini = &UserMini{
				ID:   otherUser.ID.String(),
				Name: otherUser.Name,
				Role: string(otherUser.Role),
			}
		}

		out = append(out, ConversationOut{
			ID:            conv.ID.String(),
			ParticipantID: other.String(),
			LastMessageAt: conv.LastMessageAt,
			UnreadCount:   unreadCount,
			Participant:   otherMini,
			LastMessage:   lastPtr,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// GetConversation returns a single conversation to one of its participants.
func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	convUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid conversation ID")
	}

	var conv models.Conversation
	if err := h.DB.Preload("UserLow").Preload("UserHigh").
		First(&conv, "id = ?", convUUID).Error; err != nil {
		return fail(c, 404, "Conversation not found")
	}

	if !conv.HasParticipant(userUUID) {
		return fail(c, 403, "Access denied")
	}

	return c.JSON(fiber.Map{"success": true, "data": conv})
}

// GetMessages lists a conversation's messages for a participant and marks the
// unread ones not sent by the caller as read; reading is the read receipt.
// A non-participant gets an empty list, not an error.
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	convUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid conversation ID")
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", convUUID).Error; err != nil {
		return fail(c, 404, "Conversation not found")
	}

	if !conv.HasParticipant(userUUID) {
		return c.JSON(fiber.Map{"success": true, "data": []MessageOut{}})
	}

	var messages []models.Message
	if err := h.DB.
		Where("conversation_id = ?", convUUID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		log.Println("Error fetching messages:", err)
		return fail(c, 500, "Failed to fetch messages")
	}

	if err := h.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", convUUID, userUUID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error; err != nil {
		// Read receipts are best effort; the list still goes out.
		log.Println("Error marking messages as read:", err)
	}

	out := make([]MessageOut, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageOut(&messages[i]))
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

type SendMessageReq struct {
	Content       string `json:"content"`
	AttachmentURL string `json:"attachment_url"`
}

// SendMessage appends a message; only participants may do so.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userUUID, err := getUserUUID(c)
	if err != nil {
		return fail(c, 401, "Unauthorized")
	}

	convUUID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, 400, "Invalid conversation ID")
	}

	var req SendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" && req.AttachmentURL == "" {
		return fail(c, 400, "Content is required")
	}

	var conv models.Conversation
	if err := h.DB.First(&conv, "id = ?", convUUID).Error; err != nil {
		return fail(c, 404, "Conversation not found")
	}

	if !conv.HasParticipant(userUUID) {
		return fail(c, 403, "Access denied")
	}

	msg := models.Message{
		ConversationID: convUUID,
		SenderID:       userUUID,
		Content:        req.Content,
		AttachmentURL:  req.AttachmentURL,
		IsRead:         false,
	}

	if err := h.DB.Create(&msg).Error; err != nil {
		log.Println("Error creating message:", err)
		return fail(c, 500, "Failed to send message")
	}

	_ = h.DB.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Update("last_message_at", msg.CreatedAt).Error

	recipientID := conv.OtherParticipant(userUUID)
	h.Notifier.NotifyUser(c.Context(), recipientID, map[string]interface{}{
		"type":            "chat_message",
		"conversation_id": convUUID.String(),
		"sender_id":       userUUID.String(),
		"content":         req.Content,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "data": toMessageOut(&msg)})
}
