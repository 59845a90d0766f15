package models

import "time"

type Application struct {
	BaseModel
	JobID           string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant" json:"jobId"`
	ApplicantID     string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_applicant;index" json:"applicantId"`
	Status          ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ConversationID  *string           `gorm:"type:uuid" json:"conversationId,omitempty"`
	Interview       Interview         `gorm:"embedded;embeddedPrefix:interview_" json:"interview"`
	InterviewStatus InterviewStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"interviewStatus"`

	Job       *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Applicant *User `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

// Interview хранится в колонках interview_* таблицы applications
type Interview struct {
	MeetingLink     string        `json:"meetingLink"`
	EventID         string        `json:"eventId"`
	Title           string        `json:"interviewTitle"`
	StartTime       *time.Time    `gorm:"index" json:"startTime,omitempty"`
	DurationMinutes int           `json:"duration"`
	Kind            InterviewKind `gorm:"type:varchar(20)" json:"type,omitempty"`
	ReminderSent    bool          `gorm:"not null;default:false" json:"reminderSent"`
}

func (a *Application) IsScheduled() bool {
	return a.InterviewStatus == InterviewStatusScheduled && a.Interview.StartTime != nil
}
