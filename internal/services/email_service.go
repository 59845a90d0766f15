package services

import (
	"context"
	"fmt"
	"time"

	"jobportal_backend/internal/email"
	"jobportal_backend/internal/models"
)

// InterviewEmail - данные для писем о собеседовании/экзамене
type InterviewEmail struct {
	To              string
	Name            string
	JobTitle        string
	Title           string
	Kind            models.InterviewKind
	StartTime       time.Time
	DurationMinutes int
	MeetingLink     string
}

type InterviewMailer interface {
	SendInterviewScheduled(ctx context.Context, msg InterviewEmail) error
	SendInterviewReminder(ctx context.Context, msg InterviewEmail) error
}

// EmailService собирает письма поверх email.Provider
type EmailService struct {
	provider email.Provider
}

func NewEmailService(provider email.Provider) *EmailService {
	return &EmailService{provider: provider}
}

func (s *EmailService) SendInterviewScheduled(ctx context.Context, msg InterviewEmail) error {
	heading := "Interview Scheduled"
	if msg.Kind == models.InterviewKindWrittenExam {
		heading = "Written Exam Scheduled"
	}
	body := fmt.Sprintf("Hello %s,\n\nA %s has been scheduled for %s: %s.\nStarts at: %s\nDuration: %d minutes\nLink: %s\n",
		msg.Name, msg.Kind.Label(), msg.JobTitle, msg.Title, formatStart(msg.StartTime), msg.DurationMinutes, msg.MeetingLink)

	return s.provider.SendWithTemplate(ctx, "interview_scheduled", templateData(heading, msg), &email.Email{
		To:      []string{msg.To},
		Subject: heading,
		Body:    body,
	})
}

func (s *EmailService) SendInterviewReminder(ctx context.Context, msg InterviewEmail) error {
	heading := "Reminder: Interview Tomorrow"
	if msg.Kind == models.InterviewKindWrittenExam {
		heading = "Reminder: Written Exam Tomorrow"
	}
	body := fmt.Sprintf("Hello %s,\n\nYour %s for %s starts at %s.\nLink: %s\n",
		msg.Name, msg.Kind.Label(), msg.JobTitle, formatStart(msg.StartTime), msg.MeetingLink)

	return s.provider.SendWithTemplate(ctx, "interview_reminder", templateData(heading, msg), &email.Email{
		To:      []string{msg.To},
		Subject: heading,
		Body:    body,
	})
}

func templateData(heading string, msg InterviewEmail) email.TemplateData {
	return email.TemplateData{
		"Heading":     heading,
		"Name":        msg.Name,
		"KindLabel":   msg.Kind.Label(),
		"JobTitle":    msg.JobTitle,
		"Title":       msg.Title,
		"StartTime":   formatStart(msg.StartTime),
		"Duration":    msg.DurationMinutes,
		"MeetingLink": msg.MeetingLink,
	}
}

func formatStart(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}
