package dto

import "jobportal_backend/internal/models"

type UpdateStatusRequest struct {
	// значение статуса проверяет сервис после проверки прав
	Status string `json:"status" validate:"required"`
}

type BulkUpdateStatusRequest struct {
	ApplicationIDs []string `json:"applicationIds" validate:"required,min=1,dive,required"`
	Status         string   `json:"status" validate:"required,is-application-status"`
}

type StatusUpdateResult struct {
	ApplicationID  string                   `json:"applicationId"`
	Status         models.ApplicationStatus `json:"status"`
	ConversationID *string                  `json:"conversationId"`
	Error          string                   `json:"error,omitempty"`
}

type ApplicantsResponse struct {
	Job          *models.Job          `json:"job"`
	Applications []models.Application `json:"applications"`
}
