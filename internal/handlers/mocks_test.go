package handlers

import (
	"context"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/models/chat"
	"jobportal_backend/internal/repositories"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockApplicationService struct{ mock.Mock }

func (m *mockApplicationService) Submit(ctx context.Context, db *gorm.DB, applicantID, jobID string) (*models.Application, error) {
	args := m.Called(applicantID, jobID)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockApplicationService) UpdateStatus(ctx context.Context, db *gorm.DB, requesterID, applicationID, status string) (*models.Application, *string, error) {
	args := m.Called(requesterID, applicationID, status)
	app, _ := args.Get(0).(*models.Application)
	conv, _ := args.Get(1).(*string)
	return app, conv, args.Error(2)
}

func (m *mockApplicationService) BulkUpdateStatus(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.BulkUpdateStatusRequest) ([]dto.StatusUpdateResult, error) {
	args := m.Called(recruiterID, req)
	res, _ := args.Get(0).([]dto.StatusUpdateResult)
	return res, args.Error(1)
}

func (m *mockApplicationService) GetApplicants(db *gorm.DB, requesterID, jobID string) (*dto.ApplicantsResponse, error) {
	args := m.Called(requesterID, jobID)
	res, _ := args.Get(0).(*dto.ApplicantsResponse)
	return res, args.Error(1)
}

func (m *mockApplicationService) GetAppliedJobs(db *gorm.DB, applicantID string) ([]models.Application, error) {
	args := m.Called(applicantID)
	res, _ := args.Get(0).([]models.Application)
	return res, args.Error(1)
}

func (m *mockApplicationService) GetAcceptedApplicants(db *gorm.DB, recruiterID string) ([]models.Application, error) {
	args := m.Called(recruiterID)
	res, _ := args.Get(0).([]models.Application)
	return res, args.Error(1)
}

func (m *mockApplicationService) OpenConversation(ctx context.Context, db *gorm.DB, recruiterID, applicationID string) (*chat.Conversation, error) {
	args := m.Called(recruiterID, applicationID)
	conv, _ := args.Get(0).(*chat.Conversation)
	return conv, args.Error(1)
}

type mockInterviewService struct{ mock.Mock }

func (m *mockInterviewService) Schedule(ctx context.Context, db *gorm.DB, recruiterID string, req *dto.ScheduleInterviewRequest) (*models.Application, error) {
	args := m.Called(recruiterID, req)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockInterviewService) GetByApplication(db *gorm.DB, requesterID, applicationID string) (*dto.InterviewView, error) {
	args := m.Called(requesterID, applicationID)
	v, _ := args.Get(0).(*dto.InterviewView)
	return v, args.Error(1)
}

func (m *mockInterviewService) ListForApplicant(db *gorm.DB, applicantID string) ([]dto.InterviewView, error) {
	args := m.Called(applicantID)
	v, _ := args.Get(0).([]dto.InterviewView)
	return v, args.Error(1)
}

type mockConversationService struct{ mock.Mock }

func (m *mockConversationService) GetOrCreate(db *gorm.DB, userA, userB string) (*chat.Conversation, bool, error) {
	args := m.Called(userA, userB)
	conv, _ := args.Get(0).(*chat.Conversation)
	return conv, args.Bool(1), args.Error(2)
}

func (m *mockConversationService) Create(db *gorm.DB, requesterID string, req *dto.CreateConversationRequest) (*chat.Conversation, bool, error) {
	args := m.Called(requesterID, req)
	conv, _ := args.Get(0).(*chat.Conversation)
	return conv, args.Bool(1), args.Error(2)
}

func (m *mockConversationService) ListForUser(db *gorm.DB, userID string) ([]chat.Conversation, error) {
	args := m.Called(userID)
	convs, _ := args.Get(0).([]chat.Conversation)
	return convs, args.Error(1)
}

func (m *mockConversationService) Get(db *gorm.DB, requesterID, conversationID string) (*chat.Conversation, error) {
	args := m.Called(requesterID, conversationID)
	conv, _ := args.Get(0).(*chat.Conversation)
	return conv, args.Error(1)
}

func (m *mockConversationService) PostMessage(ctx context.Context, db *gorm.DB, senderID, conversationID string, req *dto.SendMessageRequest) (*chat.Message, *chat.Conversation, error) {
	args := m.Called(senderID, conversationID, req)
	msg, _ := args.Get(0).(*chat.Message)
	conv, _ := args.Get(1).(*chat.Conversation)
	return msg, conv, args.Error(2)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) Notify(ctx context.Context, db *gorm.DB, userID, notificationType, message string, data map[string]interface{}) (*models.Notification, error) {
	args := m.Called(userID, notificationType, message, data)
	n, _ := args.Get(0).(*models.Notification)
	return n, args.Error(1)
}

func (m *mockNotificationService) List(db *gorm.DB, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	args := m.Called(userID, criteria)
	res, _ := args.Get(0).(*dto.NotificationListResponse)
	return res, args.Error(1)
}

func (m *mockNotificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	return m.Called(userID, notificationID).Error(0)
}

func (m *mockNotificationService) MarkAllAsRead(db *gorm.DB, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationService) UnreadCount(db *gorm.DB, userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}
