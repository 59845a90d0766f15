package handlers

// AppHandlers содержит все хэндлеры приложения
type AppHandlers struct {
	ApplicationHandler  *ApplicationHandler
	InterviewHandler    *InterviewHandler
	ChatHandler         *ChatHandler
	NotificationHandler *NotificationHandler
}
