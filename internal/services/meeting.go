package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Meeting struct {
	Link    string
	EventID string
}

// MeetingProvider создает встречу во внешнем календаре/видеосервисе
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, title string, start time.Time, duration time.Duration) (*Meeting, error)
}

// PlaceholderMeetingProvider выдает ссылку вида <baseURL>/<uuid> без внешних вызовов
type PlaceholderMeetingProvider struct {
	baseURL string
}

func NewPlaceholderMeetingProvider(baseURL string) *PlaceholderMeetingProvider {
	return &PlaceholderMeetingProvider{baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *PlaceholderMeetingProvider) CreateMeeting(ctx context.Context, _ string, _ time.Time, _ time.Duration) (*Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &Meeting{
		Link:    p.baseURL + "/" + id,
		EventID: id,
	}, nil
}
