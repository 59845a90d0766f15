package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/models"
	"jobportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationFixture() (*fakeConversations, *fakeNotifications, *recordingPublisher, ConversationService) {
	convs := newFakeConversations()
	notifs := &fakeNotifications{}
	pub := &recordingPublisher{}
	notifications := NewNotificationService(notifs, nil, fixedClock(testNow))
	return convs, notifs, pub, NewConversationService(convs, notifications, pub, fixedClock(testNow))
}

func TestConversationService_GetOrCreate(t *testing.T) {
	convs, _, _, svc := newConversationFixture()

	first, created, err := svc.GetOrCreate(nil, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.GetOrCreate(nil, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, convs.byID, 1)

	_, _, err = svc.GetOrCreate(nil, "u1", "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParticipants)
	_, _, err = svc.GetOrCreate(nil, "", "u1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidParticipants)
}

func TestConversationService_GetOrCreate_Concurrent(t *testing.T) {
	convs, _, _, svc := newConversationFixture()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "u1", "u2"
			if i%2 == 1 {
				a, b = b, a
			}
			conv, _, err := svc.GetOrCreate(nil, a, b)
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, convs.byID, 1)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestConversationService_Create(t *testing.T) {
	_, _, _, svc := newConversationFixture()

	conv, created, err := svc.Create(nil, "u1", &dto.CreateConversationRequest{Participants: []string{"u1", "u2"}})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, conv.HasParticipant("u2"))

	_, _, err = svc.Create(nil, "u3", &dto.CreateConversationRequest{Participants: []string{"u1", "u2"}})
	assert.ErrorIs(t, err, apperrors.ErrConversationAccessDenied)

	_, _, err = svc.Create(nil, "u1", &dto.CreateConversationRequest{Participants: []string{"u1"}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParticipants)
}

func TestConversationService_PostMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("text message updates preview and reaches peer", func(t *testing.T) {
		_, notifs, pub, svc := newConversationFixture()
		conv, _, err := svc.GetOrCreate(nil, "u1", "u2")
		require.NoError(t, err)

		msg, updated, err := svc.PostMessage(ctx, nil, "u1", conv.ID, &dto.SendMessageRequest{Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, string(models.MessageKindText), msg.Kind)
		assert.Equal(t, "hello", updated.LastMessage)
		assert.True(t, updated.UpdatedAt.Equal(testNow))

		require.NotEmpty(t, pub.events)
		assert.Equal(t, publishedEvent{UserID: "u2", Event: "message"}, pub.events[0])

		notes := notifs.forUser("u2")
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationTypeNewMessage, notes[0].Type)
		assert.Empty(t, notifs.forUser("u1"))
	})

	t.Run("non text message preview", func(t *testing.T) {
		_, _, _, svc := newConversationFixture()
		conv, _, err := svc.GetOrCreate(nil, "u1", "u2")
		require.NoError(t, err)

		_, updated, err := svc.PostMessage(ctx, nil, "u2", conv.ID, &dto.SendMessageRequest{
			Type: "interview",
			Meta: map[string]interface{}{"meetingLink": "https://meet.example.com/x"},
		})
		require.NoError(t, err)
		assert.Equal(t, "[interview]", updated.LastMessage)

		full, err := svc.Get(nil, "u1", conv.ID)
		require.NoError(t, err)
		require.Len(t, full.Messages, 1)
		assert.Contains(t, string(full.Messages[0].Meta), "meetingLink")
	})

	t.Run("rejections", func(t *testing.T) {
		_, _, _, svc := newConversationFixture()
		conv, _, err := svc.GetOrCreate(nil, "u1", "u2")
		require.NoError(t, err)

		_, _, err = svc.PostMessage(ctx, nil, "u3", conv.ID, &dto.SendMessageRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrConversationAccessDenied)

		_, _, err = svc.PostMessage(ctx, nil, "u1", "missing", &dto.SendMessageRequest{Text: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)

		_, _, err = svc.PostMessage(ctx, nil, "u1", conv.ID, &dto.SendMessageRequest{Text: "   "})
		assert.Error(t, err)

		_, _, err = svc.PostMessage(ctx, nil, "u1", conv.ID, &dto.SendMessageRequest{Text: "x", Type: "video"})
		assert.Error(t, err)
	})
}

func TestConversationService_ListAndGet(t *testing.T) {
	convs, _, _, svc := newConversationFixture()
	older, _, err := svc.GetOrCreate(nil, "u1", "u2")
	require.NoError(t, err)
	newer, _, err := svc.GetOrCreate(nil, "u1", "u3")
	require.NoError(t, err)
	convs.byID[older.ID].UpdatedAt = testNow.Add(-time.Hour)
	convs.byID[newer.ID].UpdatedAt = testNow

	list, err := svc.ListForUser(nil, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	empty, err := svc.ListForUser(nil, "u9")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = svc.Get(nil, "u3", older.ID)
	assert.ErrorIs(t, err, apperrors.ErrConversationAccessDenied)
	_, err = svc.Get(nil, "u1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "привет…", truncate("привет мир", 6))
}
