package repositories

import (
	"errors"
	"sort"
	"time"

	"jobportal_backend/internal/models/chat"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
)

type ConversationRepository interface {
	// UpsertPair возвращает единственный диалог для неупорядоченной пары; created=true, если он создан сейчас
	UpsertPair(db *gorm.DB, userA, userB string) (conv *chat.Conversation, created bool, err error)
	FindByID(db *gorm.DB, id string, withMessages bool) (*chat.Conversation, error)
	FindByUser(db *gorm.DB, userID string) ([]chat.Conversation, error)
	AppendMessage(db *gorm.DB, message *chat.Message) error
}

type ConversationRepositoryImpl struct{}

func NewConversationRepository() ConversationRepository {
	return &ConversationRepositoryImpl{}
}

func (r *ConversationRepositoryImpl) UpsertPair(db *gorm.DB, userA, userB string) (*chat.Conversation, bool, error) {
	participants := []string{userA, userB}
	sort.Strings(participants)
	key := chat.PairKey(userA, userB)

	conv := &chat.Conversation{
		ID:           uuid.NewString(),
		Participants: pq.StringArray(participants),
		PairKey:      key,
	}

	// ON CONFLICT DO NOTHING: параллельные вызовы для одной пары не создают дубликатов
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(conv)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return conv, true, nil
	}

	var existing chat.Conversation
	if err := db.Where("pair_key = ?", key).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *ConversationRepositoryImpl) FindByID(db *gorm.DB, id string, withMessages bool) (*chat.Conversation, error) {
	if !isUUID(id) {
		return nil, ErrConversationNotFound
	}
	query := db
	if withMessages {
		query = query.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		})
	}

	var conv chat.Conversation
	if err := query.First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]chat.Conversation, error) {
	var convs []chat.Conversation
	err := db.Where("? = ANY(participants)", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}

func (r *ConversationRepositoryImpl) AppendMessage(db *gorm.DB, message *chat.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		result := tx.Model(&chat.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message": message.Preview(),
				"updated_at":   message.CreatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
}
