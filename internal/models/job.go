package models

import (
	"time"

	"github.com/lib/pq"
)

type Job struct {
	BaseModel
	Title               string         `gorm:"not null" json:"title"`
	CreatedBy           string         `gorm:"type:uuid;not null;index" json:"createdBy"`
	ApplicationDeadline *time.Time     `json:"applicationDeadline,omitempty"`
	Status              JobStatus      `gorm:"type:varchar(20);default:'open'" json:"status"`
	ApplicationIDs      pq.StringArray `gorm:"type:text[]" json:"applications"`
}

// DeadlinePassed is false when the job has no deadline.
func (j *Job) DeadlinePassed(now time.Time) bool {
	return j.ApplicationDeadline != nil && now.After(*j.ApplicationDeadline)
}
