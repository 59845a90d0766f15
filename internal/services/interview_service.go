package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type InterviewService interface {
	Schedule(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.ScheduleInterviewRequest) (*models.Application, error)
	GetByApplication(db *gorm.DB, requesterID, applicationID string) (*dto.InterviewView, error)
	ListForApplicant(db *gorm.DB, applicantID string) ([]dto.InterviewView, error)
}

type interviewService struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	userRepo        repositories.UserRepository
	notifications   NotificationService
	meetings        MeetingProvider
	mailer          InterviewMailer
	now             Clock
	// dispatch запускает отправку письма, чтобы она не задерживала ответ
	dispatch func(func())
}

func NewInterviewService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	meetings MeetingProvider,
	mailer InterviewMailer,
	now Clock,
) InterviewService {
	return &interviewService{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		notifications:   notifications,
		meetings:        meetings,
		mailer:          mailer,
		now:             orNow(now),
		dispatch:        func(f func()) { go f() },
	}
}

func (s *interviewService) Schedule(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.ScheduleInterviewRequest) (*models.Application, error) {
	kind := models.InterviewKind(strings.ToLower(req.Type))
	if kind == "" {
		kind = models.InterviewKindInterview
	}
	if !kind.Valid() {
		return nil, apperrors.NewBadRequestError("type must be interview or written_exam")
	}
	title := strings.TrimSpace(req.InterviewTitle)
	if req.ApplicationID == "" || title == "" || req.StartTime.IsZero() || req.Duration == 0 {
		return nil, apperrors.NewBadRequestError("applicationId, interviewTitle, startTime and duration are required")
	}
	if req.Duration < 0 {
		return nil, apperrors.NewBadRequestError("duration must be positive")
	}
	if !req.StartTime.After(s.now()) {
		return nil, apperrors.NewBadRequestError("startTime must be in the future")
	}

	application, err := s.applicationRepo.FindByID(db, req.ApplicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	job, err := s.jobOf(db, application)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != recruiterID {
		return nil, apperrors.ErrNotJobOwner
	}

	start := req.StartTime.UTC()
	duration := time.Duration(req.Duration) * time.Minute
	meeting, err := s.meetings.CreateMeeting(ctx, title, start, duration)
	if err != nil {
		return nil, apperrors.ErrMeetingUnavailable.WithError(err)
	}

	interview := models.Interview{
		MeetingLink:     meeting.Link,
		EventID:         meeting.EventID,
		Title:           title,
		StartTime:       &start,
		DurationMinutes: req.Duration,
		Kind:            kind,
		ReminderSent:    false,
	}
	if err := s.applicationRepo.SaveInterview(db, application.ID, interview); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	application.Interview = interview
	application.InterviewStatus = models.InterviewStatusScheduled

	notificationType := models.NotificationTypeInterviewScheduled
	article := "An interview"
	if kind == models.InterviewKindWrittenExam {
		notificationType = models.NotificationTypeExamScheduled
		article = "A written exam"
	}
	if s.notifications != nil {
		_, err := s.notifications.Notify(ctx, db, application.ApplicantID, notificationType,
			fmt.Sprintf("%s has been scheduled for %s: %s", article, job.Title, title),
			map[string]interface{}{
				"applicationId": application.ID,
				"meetingLink":   meeting.Link,
				"startTime":     start,
				"type":          kind,
			})
		if err != nil {
			logger.CtxWithError(ctx, "failed to notify applicant about interview", err, "application_id", application.ID)
		}
	}

	s.sendScheduledEmail(ctx, db, application, job)
	return application, nil
}

// sendScheduledEmail - best effort, ошибки только в лог
func (s *interviewService) sendScheduledEmail(ctx context.Context, db *gorm.DB, application *models.Application, job *models.Job) {
	if s.mailer == nil {
		return
	}
	applicant, err := s.userRepo.FindByID(db, application.ApplicantID)
	if err != nil {
		logger.CtxWithError(ctx, "interview email skipped: applicant lookup failed", err, "application_id", application.ID)
		return
	}
	if applicant.Email == "" {
		return
	}

	msg := InterviewEmail{
		To:              applicant.Email,
		Name:            applicant.Fullname,
		JobTitle:        job.Title,
		Title:           application.Interview.Title,
		Kind:            application.Interview.Kind,
		StartTime:       *application.Interview.StartTime,
		DurationMinutes: application.Interview.DurationMinutes,
		MeetingLink:     application.Interview.MeetingLink,
	}
	mailCtx := context.WithoutCancel(ctx)
	s.dispatch(func() {
		if err := s.mailer.SendInterviewScheduled(mailCtx, msg); err != nil {
			logger.CtxWithError(mailCtx, "failed to send interview email", err, "application_id", application.ID)
		}
	})
}

func (s *interviewService) GetByApplication(db *gorm.DB, requesterID, applicationID string) (*dto.InterviewView, error) {
	application, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	job, err := s.jobOf(db, application)
	if err != nil {
		return nil, err
	}
	if requesterID != application.ApplicantID && requesterID != job.CreatedBy {
		return nil, apperrors.ErrInterviewAccessDenied
	}

	view := dto.NewInterviewView(application)
	return &view, nil
}

func (s *interviewService) ListForApplicant(db *gorm.DB, applicantID string) ([]dto.InterviewView, error) {
	applications, err := s.applicationRepo.FindScheduledByApplicant(db, applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	views := make([]dto.InterviewView, 0, len(applications))
	for i := range applications {
		views = append(views, dto.NewInterviewView(&applications[i]))
	}
	return views, nil
}

func (s *interviewService) jobOf(db *gorm.DB, application *models.Application) (*models.Job, error) {
	if application.Job != nil {
		return application.Job, nil
	}
	job, err := s.jobRepo.FindByID(db, application.JobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	application.Job = job
	return job, nil
}
