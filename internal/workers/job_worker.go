package workers

import (
	"context"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services"

	"gorm.io/gorm"
)

const jobWorkerName = "job_closer"

type JobWorker struct {
	db       *gorm.DB
	jobRepo  repositories.JobRepository
	interval time.Duration
	now      services.Clock
}

func NewJobWorker(db *gorm.DB, jobRepo repositories.JobRepository, now services.Clock) *JobWorker {
	if now == nil {
		now = time.Now
	}
	return &JobWorker{db: db, jobRepo: jobRepo, interval: time.Hour, now: now}
}

// Start автоматически закрывает вакансии с прошедшим дедлайном каждый час
func (w *JobWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog(jobWorkerName, "stop", nil)
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *JobWorker) RunOnce(ctx context.Context) (int64, error) {
	var db *gorm.DB
	if w.db != nil {
		db = w.db.WithContext(ctx)
	}
	closed, err := w.jobRepo.CloseExpired(db, w.now())
	if err != nil || closed > 0 {
		logger.WorkerLog(jobWorkerName, "close_expired", err, "closed", closed)
	}
	return closed, err
}
