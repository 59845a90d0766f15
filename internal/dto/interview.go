package dto

import (
	"time"

	"jobportal_backend/internal/models"
)

type ScheduleInterviewRequest struct {
	ApplicationID  string    `json:"applicationId" validate:"required"`
	InterviewTitle string    `json:"interviewTitle" validate:"required,max=200"`
	StartTime      time.Time `json:"startTime" validate:"required"`
	Duration       int       `json:"duration" validate:"required,gt=0,lte=480"`
	Type           string    `json:"type" validate:"omitempty,is-interview-kind"`
}

type MeetingResponse struct {
	MeetingLink string `json:"meetingLink"`
	EventID     string `json:"eventId"`
}

type InterviewView struct {
	ApplicationID   string                 `json:"applicationId"`
	Interview       models.Interview       `json:"interview"`
	InterviewStatus models.InterviewStatus `json:"interviewStatus"`
	Job             *models.Job            `json:"job,omitempty"`
}

func NewInterviewView(a *models.Application) InterviewView {
	return InterviewView{
		ApplicationID:   a.ID,
		Interview:       a.Interview,
		InterviewStatus: a.InterviewStatus,
		Job:             a.Job,
	}
}
