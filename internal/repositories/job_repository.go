package repositories

import (
	"errors"
	"time"

	"jobportal_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Job, error)
	// CloseExpired переводит open вакансии с истекшим дедлайном в closed
	CloseExpired(db *gorm.DB, now time.Time) (int64, error)
}

type JobRepositoryImpl struct{}

func NewJobRepository() JobRepository {
	return &JobRepositoryImpl{}
}

func (r *JobRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Job, error) {
	if !isUUID(id) {
		return nil, ErrJobNotFound
	}
	var job models.Job
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) CloseExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Job{}).
		Where("status = ? AND application_deadline IS NOT NULL AND application_deadline < ?", models.JobStatusOpen, now).
		Update("status", models.JobStatusClosed)
	return result.RowsAffected, result.Error
}
