package services

// ServiceContainer содержит все сервисы приложения
type ServiceContainer struct {
	ApplicationService  ApplicationService
	InterviewService    InterviewService
	ConversationService ConversationService
	NotificationService NotificationService
	EmailService        InterviewMailer
}
