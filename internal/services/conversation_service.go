package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/models/chat"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationService interface {
	// GetOrCreate - один диалог на неупорядоченную пару пользователей
	GetOrCreate(db *gorm.DB, userA, userB string) (*chat.Conversation, bool, error)
	Create(db *gorm.DB, requesterID string, req *dto.CreateConversationRequest) (*chat.Conversation, bool, error)
	ListForUser(db *gorm.DB, userID string) ([]chat.Conversation, error)
	Get(db *gorm.DB, requesterID, conversationID string) (*chat.Conversation, error)
	PostMessage(ctx context.Context, db *gorm.DB, senderID, conversationID string, req *dto.SendMessageRequest) (*chat.Message, *chat.Conversation, error)
}

type conversationService struct {
	conversationRepo repositories.ConversationRepository
	notifications    NotificationService
	publisher        Publisher
	now              Clock
}

func NewConversationService(
	conversationRepo repositories.ConversationRepository,
	notifications NotificationService,
	publisher Publisher,
	now Clock,
) ConversationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &conversationService{
		conversationRepo: conversationRepo,
		notifications:    notifications,
		publisher:        publisher,
		now:              orNow(now),
	}
}

func (s *conversationService) GetOrCreate(db *gorm.DB, userA, userB string) (*chat.Conversation, bool, error) {
	if userA == "" || userB == "" || userA == userB {
		return nil, false, apperrors.ErrInvalidParticipants
	}
	conv, created, err := s.conversationRepo.UpsertPair(db, userA, userB)
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}
	return conv, created, nil
}

func (s *conversationService) Create(db *gorm.DB, requesterID string, req *dto.CreateConversationRequest) (*chat.Conversation, bool, error) {
	if len(req.Participants) != 2 {
		return nil, false, apperrors.ErrInvalidParticipants
	}
	a, b := req.Participants[0], req.Participants[1]
	if requesterID != a && requesterID != b {
		return nil, false, apperrors.ErrConversationAccessDenied
	}
	return s.GetOrCreate(db, a, b)
}

func (s *conversationService) ListForUser(db *gorm.DB, userID string) ([]chat.Conversation, error) {
	convs, err := s.conversationRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if convs == nil {
		convs = []chat.Conversation{}
	}
	return convs, nil
}

func (s *conversationService) Get(db *gorm.DB, requesterID, conversationID string) (*chat.Conversation, error) {
	conv, err := s.find(db, conversationID, true)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, apperrors.ErrConversationAccessDenied
	}
	return conv, nil
}

func (s *conversationService) PostMessage(ctx context.Context, db *gorm.DB, senderID, conversationID string, req *dto.SendMessageRequest) (*chat.Message, *chat.Conversation, error) {
	kind := models.MessageKind(strings.ToLower(req.Type))
	if kind == "" {
		kind = models.MessageKindText
	}
	if !kind.Valid() {
		return nil, nil, apperrors.NewBadRequestError("Unsupported message type")
	}
	if kind == models.MessageKindText && strings.TrimSpace(req.Text) == "" {
		return nil, nil, apperrors.NewBadRequestError("Message text is required")
	}

	conv, err := s.find(db, conversationID, false)
	if err != nil {
		return nil, nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, nil, apperrors.ErrConversationAccessDenied
	}

	msg := &chat.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           req.Text,
		Kind:           string(kind),
		CreatedAt:      s.now(),
	}
	if len(req.Meta) > 0 {
		raw, err := json.Marshal(req.Meta)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("Invalid message meta")
		}
		msg.Meta = datatypes.JSON(raw)
	}

	if err := s.conversationRepo.AppendMessage(db, msg); err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, nil, apperrors.ErrConversationNotFound
		}
		return nil, nil, apperrors.InternalError(err)
	}
	conv.LastMessage = msg.Preview()
	conv.UpdatedAt = msg.CreatedAt

	peer := conv.Peer(senderID)
	s.publisher.PublishToUser(peer, "message", msg)
	if s.notifications != nil {
		_, err := s.notifications.Notify(ctx, db, peer, models.NotificationTypeNewMessage, "New message: "+truncate(msg.Preview(), 80),
			map[string]interface{}{"conversationId": conv.ID, "messageId": msg.ID, "senderId": senderID})
		if err != nil {
			logger.CtxWithError(ctx, "failed to record new_message notification", err, "conversation_id", conv.ID)
		}
	}

	return msg, conv, nil
}

func (s *conversationService) find(db *gorm.DB, id string, withMessages bool) (*chat.Conversation, error) {
	conv, err := s.conversationRepo.FindByID(db, id, withMessages)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return conv, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
