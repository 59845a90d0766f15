package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/models/chat"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ApplicationService interface {
	Submit(ctx context.Context, db *gorm.DB, applicantID, jobID string) (*models.Application, error)
	// UpdateStatus возвращает id диалога, если отклик принят
	UpdateStatus(ctx context.Context, db *gorm.DB, requesterID, applicationID, status string) (*models.Application, *string, error)
	BulkUpdateStatus(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.BulkUpdateStatusRequest) ([]dto.StatusUpdateResult, error)
	GetApplicants(db *gorm.DB, requesterID, jobID string) (*dto.ApplicantsResponse, error)
	GetAppliedJobs(db *gorm.DB, applicantID string) ([]models.Application, error)
	GetAcceptedApplicants(db *gorm.DB, recruiterID string) ([]models.Application, error)
	OpenConversation(ctx context.Context, db *gorm.DB, recruiterID, applicationID string) (*chat.Conversation, error)
}

type applicationService struct {
	applicationRepo repositories.ApplicationRepository
	jobRepo         repositories.JobRepository
	userRepo        repositories.UserRepository
	conversations   ConversationService
	notifications   NotificationService
	now             Clock
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	conversations ConversationService,
	notifications NotificationService,
	now Clock,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		conversations:   conversations,
		notifications:   notifications,
		now:             orNow(now),
	}
}

func (s *applicationService) Submit(ctx context.Context, db *gorm.DB, applicantID, jobID string) (*models.Application, error) {
	applicant, err := s.userRepo.FindByID(db, applicantID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if applicant.IsBanned {
		return nil, apperrors.ErrUserBanned
	}

	if strings.TrimSpace(jobID) == "" {
		return nil, apperrors.NewBadRequestError("Job id is required")
	}

	exists, err := s.applicationRepo.ExistsForApplicant(db, jobID, applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrApplicationExists
	}

	job, err := s.findJob(db, jobID)
	if err != nil {
		return nil, err
	}
	if job.DeadlinePassed(s.now()) {
		return nil, apperrors.ErrDeadlinePassed
	}

	application := &models.Application{
		JobID:           job.ID,
		ApplicantID:     applicantID,
		Status:          models.ApplicationStatusPending,
		InterviewStatus: models.InterviewStatusPending,
	}
	if err := s.applicationRepo.CreateForJob(db, application); err != nil {
		switch {
		case errors.Is(err, repositories.ErrApplicationExists):
			return nil, apperrors.ErrApplicationExists
		case errors.Is(err, repositories.ErrJobNotFound):
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	application.Job = job

	s.notify(ctx, db, job.CreatedBy, models.NotificationTypeApplication,
		fmt.Sprintf("%s applied to your job: %s", applicant.Fullname, job.Title),
		map[string]interface{}{
			"jobId":         job.ID,
			"applicationId": application.ID,
			"applicantId":   applicantID,
		})

	return application, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, db *gorm.DB, requesterID, applicationID, rawStatus string) (*models.Application, *string, error) {
	if strings.TrimSpace(rawStatus) == "" {
		return nil, nil, apperrors.NewBadRequestError("Status is required")
	}

	application, err := s.findApplication(db, applicationID)
	if err != nil {
		return nil, nil, err
	}
	job, err := s.jobOf(db, application)
	if err != nil {
		return nil, nil, err
	}

	// права проверяются до значения статуса: кандидату любой статус кроме withdrawn запрещен
	status, known := models.ParseApplicationStatus(rawStatus)
	if requesterID == application.ApplicantID {
		if status != models.ApplicationStatusWithdrawn {
			return nil, nil, apperrors.ErrApplicantWithdrawOnly
		}
	} else if requesterID != job.CreatedBy {
		return nil, nil, apperrors.ErrNotJobOwner
	}
	if !known {
		return nil, nil, apperrors.ErrInvalidApplicationStatus
	}

	conversationID, err := s.applyStatus(ctx, db, application, job, status)
	if err != nil {
		return nil, nil, err
	}
	return application, conversationID, nil
}

func (s *applicationService) BulkUpdateStatus(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.BulkUpdateStatusRequest) ([]dto.StatusUpdateResult, error) {
	if len(req.ApplicationIDs) == 0 {
		return nil, apperrors.NewBadRequestError("applicationIds array is required")
	}
	if strings.TrimSpace(req.Status) == "" {
		return nil, apperrors.NewBadRequestError("Status is required")
	}
	status, ok := models.ParseApplicationStatus(req.Status)
	if !ok {
		return nil, apperrors.ErrInvalidApplicationStatus
	}

	applications, err := s.applicationRepo.FindByIDs(db, req.ApplicationIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(applications) == 0 {
		return nil, apperrors.ErrApplicationNotFound
	}

	// сначала проверяем права на все отклики, и только потом что-то меняем
	jobs := make([]*models.Job, len(applications))
	for i := range applications {
		job, err := s.jobOf(db, &applications[i])
		if err != nil {
			if errors.Is(err, apperrors.ErrJobNotFound) {
				return nil, apperrors.ErrNotJobOwner
			}
			return nil, err
		}
		if job.CreatedBy != recruiterID {
			return nil, apperrors.ErrNotJobOwner
		}
		jobs[i] = job
	}

	results := make([]dto.StatusUpdateResult, 0, len(applications))
	for i := range applications {
		application := &applications[i]
		result := dto.StatusUpdateResult{ApplicationID: application.ID, Status: status}

		conversationID, err := s.applyStatus(ctx, db, application, jobs[i], status)
		if err != nil {
			logger.CtxWithError(ctx, "bulk status update failed for application", err, "application_id", application.ID)
			result.Status = application.Status
			result.Error = "update failed"
			if errors.Is(err, apperrors.ErrInvalidStatusTransition) {
				result.Error = apperrors.ErrInvalidStatusTransition.Message
			}
		}
		result.ConversationID = conversationID
		results = append(results, result)
	}
	return results, nil
}

// applyStatus сохраняет статус и делает побочные эффекты: диалог при accepted, уведомление кандидату.
// Ошибки побочных эффектов только логируются.
func (s *applicationService) applyStatus(ctx context.Context, db *gorm.DB, application *models.Application, job *models.Job, status models.ApplicationStatus) (*string, error) {
	if !application.Status.CanTransitionTo(status) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	var conversationID *string
	if status == models.ApplicationStatusAccepted {
		conv, _, err := s.conversations.GetOrCreate(db, application.ApplicantID, job.CreatedBy)
		if err != nil {
			logger.CtxWithError(ctx, "failed to create conversation on accept", err, "application_id", application.ID)
		} else {
			conversationID = &conv.ID
		}
	}

	if err := s.applicationRepo.UpdateStatus(db, application.ID, status, conversationID); err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	application.Status = status
	if conversationID != nil {
		application.ConversationID = conversationID
	}

	data := map[string]interface{}{
		"applicationId": application.ID,
		"jobId":         job.ID,
		"status":        status,
	}
	message := fmt.Sprintf("Your application for %s was %s", job.Title, status)
	if status == models.ApplicationStatusAccepted {
		message = fmt.Sprintf("Your application for %s was accepted. Open chat to view interview schedule.", job.Title)
		data["conversationId"] = conversationID
	}
	s.notify(ctx, db, application.ApplicantID, models.NotificationTypeStatusUpdate, message, data)

	return conversationID, nil
}

func (s *applicationService) GetApplicants(db *gorm.DB, requesterID, jobID string) (*dto.ApplicantsResponse, error) {
	job, err := s.findJob(db, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != requesterID {
		return nil, apperrors.ErrNotJobOwner
	}

	applications, err := s.applicationRepo.FindByJob(db, job.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	RankByGrade(applications)
	if applications == nil {
		applications = []models.Application{}
	}

	return &dto.ApplicantsResponse{Job: job, Applications: applications}, nil
}

// RankByGrade сортирует по убыванию оценки; без оценки - в самый конец, порядок равных сохраняется
func RankByGrade(applications []models.Application) {
	grade := func(a *models.Application) float64 {
		if a.Applicant == nil || a.Applicant.Grade == nil || math.IsNaN(*a.Applicant.Grade) {
			return math.Inf(-1)
		}
		return *a.Applicant.Grade
	}
	sort.SliceStable(applications, func(i, j int) bool {
		return grade(&applications[i]) > grade(&applications[j])
	})
}

func (s *applicationService) GetAppliedJobs(db *gorm.DB, applicantID string) ([]models.Application, error) {
	applications, err := s.applicationRepo.FindByApplicant(db, applicantID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if applications == nil {
		applications = []models.Application{}
	}
	return applications, nil
}

func (s *applicationService) GetAcceptedApplicants(db *gorm.DB, recruiterID string) ([]models.Application, error) {
	applications, err := s.applicationRepo.FindAcceptedByRecruiter(db, recruiterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if applications == nil {
		applications = []models.Application{}
	}
	return applications, nil
}

func (s *applicationService) OpenConversation(ctx context.Context, db *gorm.DB, recruiterID, applicationID string) (*chat.Conversation, error) {
	application, err := s.findApplication(db, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobOf(db, application)
	if err != nil {
		return nil, err
	}
	if job.CreatedBy != recruiterID {
		return nil, apperrors.ErrNotJobOwner
	}

	conv, _, err := s.conversations.GetOrCreate(db, application.ApplicantID, recruiterID)
	if err != nil {
		return nil, err
	}
	if application.ConversationID == nil || *application.ConversationID != conv.ID {
		if err := s.applicationRepo.SetConversation(db, application.ID, conv.ID); err != nil {
			logger.CtxWithError(ctx, "failed to store conversation on application", err, "application_id", application.ID)
		}
	}
	return conv, nil
}

func (s *applicationService) notify(ctx context.Context, db *gorm.DB, userID, notificationType, message string, data map[string]interface{}) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Notify(ctx, db, userID, notificationType, message, data); err != nil {
		logger.CtxWithError(ctx, "failed to send notification", err, "user_id", userID, "type", notificationType)
	}
}

func (s *applicationService) findApplication(db *gorm.DB, id string) (*models.Application, error) {
	application, err := s.applicationRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return application, nil
}

func (s *applicationService) findJob(db *gorm.DB, id string) (*models.Job, error) {
	job, err := s.jobRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

// jobOf использует предзагруженную вакансию, если она есть
func (s *applicationService) jobOf(db *gorm.DB, application *models.Application) (*models.Job, error) {
	if application.Job != nil {
		return application.Job, nil
	}
	job, err := s.findJob(db, application.JobID)
	if err != nil {
		return nil, err
	}
	application.Job = job
	return job, nil
}
