package repositories

import (
	"errors"
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application for this job already exists")
)

type ApplicationRepository interface {
	// CreateForJob вставляет отклик и дописывает его id в jobs.application_ids одной транзакцией
	CreateForJob(db *gorm.DB, application *models.Application) error
	ExistsForApplicant(db *gorm.DB, jobID, applicantID string) (bool, error)

	FindByID(db *gorm.DB, id string) (*models.Application, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.Application, error)
	FindByJob(db *gorm.DB, jobID string) ([]models.Application, error)
	FindByApplicant(db *gorm.DB, applicantID string) ([]models.Application, error)
	FindScheduledByApplicant(db *gorm.DB, applicantID string) ([]models.Application, error)
	FindAcceptedByRecruiter(db *gorm.DB, recruiterID string) ([]models.Application, error)
	// FindDueReminders: scheduled, reminder not sent, start in [from, to)
	FindDueReminders(db *gorm.DB, from, to time.Time) ([]models.Application, error)

	UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, conversationID *string) error
	SetConversation(db *gorm.DB, id, conversationID string) error
	SaveInterview(db *gorm.DB, id string, interview models.Interview) error
	// MarkReminderSent возвращает false, если флаг уже был выставлен кем-то другим
	MarkReminderSent(db *gorm.DB, id string) (bool, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) CreateForJob(db *gorm.DB, application *models.Application) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(application).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrApplicationExists
			}
			return err
		}

		result := tx.Model(&models.Job{}).
			Where("id = ?", application.JobID).
			Update("application_ids", gorm.Expr("array_append(application_ids, ?)", application.ID))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrJobNotFound
		}
		return nil
	})
}

func (r *ApplicationRepositoryImpl) ExistsForApplicant(db *gorm.DB, jobID, applicantID string) (bool, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Where("job_id = ? AND applicant_id = ?", jobID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	if !isUUID(id) {
		return nil, ErrApplicationNotFound
	}
	var application models.Application
	err := db.Preload("Job").First(&application, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &application, nil
}

func (r *ApplicationRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.Application, error) {
	var applications []models.Application
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return applications, nil
	}
	err := db.Preload("Job").Where("id IN ?", ids).Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByJob(db *gorm.DB, jobID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Applicant").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindByApplicant(db *gorm.DB, applicantID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindScheduledByApplicant(db *gorm.DB, applicantID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").
		Where("applicant_id = ? AND interview_status = ?", applicantID, models.InterviewStatusScheduled).
		Order("interview_start_time ASC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindAcceptedByRecruiter(db *gorm.DB, recruiterID string) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").Preload("Applicant").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.created_by = ? AND applications.status = ?", recruiterID, models.ApplicationStatusAccepted).
		Order("applications.updated_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) FindDueReminders(db *gorm.DB, from, to time.Time) ([]models.Application, error) {
	var applications []models.Application
	err := db.Preload("Job").Preload("Applicant").
		Where("interview_status = ? AND interview_reminder_sent = ?", models.InterviewStatusScheduled, false).
		Where("interview_start_time >= ? AND interview_start_time < ?", from, to).
		Order("interview_start_time ASC").
		Find(&applications).Error
	return applications, err
}

func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, conversationID *string) error {
	updates := map[string]interface{}{"status": status}
	if conversationID != nil {
		updates["conversation_id"] = *conversationID
	}
	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) SetConversation(db *gorm.DB, id, conversationID string) error {
	result := db.Model(&models.Application{}).Where("id = ?", id).Update("conversation_id", conversationID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) SaveInterview(db *gorm.DB, id string, interview models.Interview) error {
	result := db.Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"interview_meeting_link":     interview.MeetingLink,
		"interview_event_id":         interview.EventID,
		"interview_title":            interview.Title,
		"interview_start_time":       interview.StartTime,
		"interview_duration_minutes": interview.DurationMinutes,
		"interview_kind":             interview.Kind,
		"interview_reminder_sent":    false,
		"interview_status":           models.InterviewStatusScheduled,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) MarkReminderSent(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.Application{}).
		Where("id = ? AND interview_reminder_sent = ?", id, false).
		Update("interview_reminder_sent", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
