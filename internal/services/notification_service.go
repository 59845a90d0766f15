package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Publisher доставляет событие в открытые websocket соединения пользователя
type Publisher interface {
	PublishToUser(userID, event string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishToUser(string, string, interface{}) {}

type NotificationService interface {
	Notify(ctx context.Context, db *gorm.DB, userID, notificationType, message string, data map[string]interface{}) (*models.Notification, error)
	List(db *gorm.DB, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) (int64, error)
	UnreadCount(db *gorm.DB, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	publisher        Publisher
	locks            *keyedMutex
	now              Clock
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	publisher Publisher,
	now Clock,
) NotificationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		locks:            newKeyedMutex(),
		now:              orNow(now),
	}
}

func (s *notificationService) Notify(ctx context.Context, db *gorm.DB, userID, notificationType, message string, data map[string]interface{}) (*models.Notification, error) {
	if userID == "" {
		return nil, errors.New("notify: empty user id")
	}

	n := &models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
	}
	n.CreatedAt = s.now()
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("notify: marshal data: %w", err)
		}
		n.Data = datatypes.JSON(raw)
	}

	// записи одного пользователя идут строго по очереди
	unlock := s.locks.Lock(userID)
	err := s.notificationRepo.Create(db, n)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("notify %s: %w", userID, err)
	}

	s.publisher.PublishToUser(userID, "notification", n)
	return n, nil
}

func (s *notificationService) List(db *gorm.DB, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 || criteria.PageSize > 100 {
		criteria.PageSize = 20
	}

	items, total, err := s.notificationRepo.FindByUser(db, userID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	unread, err := s.notificationRepo.UnreadCount(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if items == nil {
		items = []models.Notification{}
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         total,
		Unread:        unread,
		Page:          criteria.Page,
		PageSize:      criteria.PageSize,
	}, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotificationNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	n, err := s.notificationRepo.MarkAllAsRead(db, userID, s.now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(db *gorm.DB, userID string) (int64, error) {
	n, err := s.notificationRepo.UnreadCount(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return n, nil
}
