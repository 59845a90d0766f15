package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationTypeApplication        = "application"
	NotificationTypeStatusUpdate       = "status_update"
	NotificationTypeInterviewScheduled = "interview_scheduled"
	NotificationTypeExamScheduled      = "exam_scheduled"
	NotificationTypeInterviewReminder  = "interview_reminder"
	NotificationTypeExamReminder       = "exam_reminder"
	NotificationTypeNewMessage         = "new_message"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1" json:"userId"`
	Type    string         `gorm:"not null" json:"type"`
	Message string         `gorm:"not null" json:"message"`
	Data    datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead  bool           `gorm:"default:false" json:"read"`
	ReadAt  *time.Time     `json:"readAt,omitempty"`
}
