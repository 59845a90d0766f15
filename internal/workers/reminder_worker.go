package workers

import (
	"context"
	"fmt"
	"time"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const reminderWorkerName = "interview_reminder"

// ReminderWorker рассылает напоминания за lead до начала собеседования/экзамена
type ReminderWorker struct {
	db              *gorm.DB
	applicationRepo repositories.ApplicationRepository
	notifications   services.NotificationService
	mailer          services.InterviewMailer
	interval        time.Duration
	lead            time.Duration
	now             services.Clock

	sent   prometheus.Counter
	failed prometheus.Counter
}

func NewReminderWorker(
	db *gorm.DB,
	applicationRepo repositories.ApplicationRepository,
	notifications services.NotificationService,
	mailer services.InterviewMailer,
	interval, lead time.Duration,
	now services.Clock,
) *ReminderWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lead <= 0 {
		lead = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderWorker{
		db:              db,
		applicationRepo: applicationRepo,
		notifications:   notifications,
		mailer:          mailer,
		interval:        interval,
		lead:            lead,
		now:             now,
	}
}

// WithMetrics регистрирует счетчики в reg
func (w *ReminderWorker) WithMetrics(reg prometheus.Registerer) *ReminderWorker {
	factory := promauto.With(reg)
	w.sent = factory.NewCounter(prometheus.CounterOpts{
		Name: "interview_reminders_sent_total",
		Help: "Interview and exam reminders delivered",
	})
	w.failed = factory.NewCounter(prometheus.CounterOpts{
		Name: "interview_reminders_failed_total",
		Help: "Reminders that could not be recorded",
	})
	return w
}

// Start делает первый проход сразу, затем по тикеру; блокируется до отмены ctx
func (w *ReminderWorker) Start(ctx context.Context) {
	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog(reminderWorkerName, "stop", nil)
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReminderWorker) tick(ctx context.Context) {
	sent, err := w.RunOnce(ctx)
	if err != nil || sent > 0 {
		logger.WorkerLog(reminderWorkerName, "scan", err, "sent", sent)
	}
}

// RunOnce обрабатывает окно [now+lead, now+lead+interval) и возвращает число отправленных напоминаний
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	from := w.now().Add(w.lead)
	to := from.Add(w.interval)

	due, err := w.applicationRepo.FindDueReminders(w.conn(ctx), from, to)
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}

	sent := 0
	for i := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if w.remind(ctx, &due[i]) {
			sent++
		}
	}
	return sent, nil
}

func (w *ReminderWorker) remind(ctx context.Context, application *models.Application) bool {
	if application.Interview.StartTime == nil {
		return false
	}
	// сначала флаг: повторный проход или второй инстанс не отправят дубль
	marked, err := w.applicationRepo.MarkReminderSent(w.conn(ctx), application.ID)
	if err != nil {
		w.inc(w.failed)
		logger.WorkerLog(reminderWorkerName, "mark_sent", err, "application_id", application.ID)
		return false
	}
	if !marked {
		return false
	}

	interview := application.Interview
	jobTitle := ""
	if application.Job != nil {
		jobTitle = application.Job.Title
	}

	notificationType := models.NotificationTypeInterviewReminder
	if interview.Kind == models.InterviewKindWrittenExam {
		notificationType = models.NotificationTypeExamReminder
	}
	start := interview.StartTime.UTC()
	message := fmt.Sprintf("Reminder: your %s for %s is scheduled at %s",
		interview.Kind.Label(), jobTitle, start.Format("2006-01-02 15:04 MST"))

	if w.notifications != nil {
		_, err := w.notifications.Notify(ctx, w.conn(ctx), application.ApplicantID, notificationType, message,
			map[string]interface{}{
				"applicationId": application.ID,
				"meetingLink":   interview.MeetingLink,
				"startTime":     start,
				"type":          interview.Kind,
			})
		if err != nil {
			logger.WorkerLog(reminderWorkerName, "notify", err, "application_id", application.ID)
		}
	}

	if w.mailer != nil && application.Applicant != nil && application.Applicant.Email != "" {
		err := w.mailer.SendInterviewReminder(ctx, services.InterviewEmail{
			To:              application.Applicant.Email,
			Name:            application.Applicant.Fullname,
			JobTitle:        jobTitle,
			Title:           interview.Title,
			Kind:            interview.Kind,
			StartTime:       start,
			DurationMinutes: interview.DurationMinutes,
			MeetingLink:     interview.MeetingLink,
		})
		if err != nil {
			logger.WorkerLog(reminderWorkerName, "email", err, "application_id", application.ID)
		}
	}

	w.inc(w.sent)
	return true
}

func (w *ReminderWorker) inc(c prometheus.Counter) {
	if c != nil {
		c.Inc()
	}
}

func (w *ReminderWorker) conn(ctx context.Context) *gorm.DB {
	if w.db == nil {
		return nil
	}
	return w.db.WithContext(ctx)
}
