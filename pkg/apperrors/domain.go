package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные ошибки бизнес-логики.
Сервисы возвращают их как есть, handler-слой отдает клиенту HTTPCode и Message.
*/

// ErrNotFound - фабрика для "не найдено" (404)
func ErrNotFound(err error, domain, message string) *AppError {
	return Wrap(err, CodeNotFound, domain, message, http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Users ---

var ErrUserBanned = New(
	CodeUserBanned,
	"user",
	"Your account has been banned",
	http.StatusForbidden,
)

var ErrUserNotFound = New(CodeNotFound, "user", "User not found", http.StatusNotFound)

// --- Jobs & Applications ---

var ErrJobNotFound = New(CodeNotFound, "job", "Job not found", http.StatusNotFound)

var ErrApplicationNotFound = New(CodeNotFound, "application", "Application not found", http.StatusNotFound)

// ErrApplicationExists - повторный отклик на ту же вакансию.
// 400, а не 409: клиенты ожидают именно этот код.
var ErrApplicationExists = New(
	CodeAlreadyExists,
	"application",
	"You have already applied for this job",
	http.StatusBadRequest,
)

var ErrDeadlinePassed = New(
	CodeDeadlinePassed,
	"application",
	"Application deadline has passed",
	http.StatusBadRequest,
)

var ErrNotJobOwner = New(
	CodeForbidden,
	"application",
	"You are not allowed to manage applications for this job",
	http.StatusForbidden,
)

var ErrApplicantWithdrawOnly = New(
	CodeForbidden,
	"application",
	"Applicants may only withdraw their application",
	http.StatusForbidden,
)

var ErrInvalidApplicationStatus = New(
	CodeInvalidStatus,
	"application",
	"Status must be one of pending, accepted, rejected, withdrawn",
	http.StatusBadRequest,
)

var ErrInvalidStatusTransition = New(
	CodeInvalidStatus,
	"application",
	"Application status cannot change in this direction",
	http.StatusBadRequest,
)

// --- Interviews ---

var ErrInterviewAccessDenied = New(
	CodeForbidden,
	"interview",
	"You are not allowed to view this interview",
	http.StatusForbidden,
)

var ErrMeetingUnavailable = New(
	CodeExternalServiceError,
	"interview",
	"Failed to create meeting",
	http.StatusBadGateway,
)

// --- Conversations ---

var ErrConversationNotFound = New(CodeNotFound, "chat", "Conversation not found", http.StatusNotFound)

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"chat",
	"You are not a participant of this conversation",
	http.StatusForbidden,
)

var ErrInvalidParticipants = New(
	CodeValidationFailed,
	"chat",
	"A conversation needs exactly two distinct participants",
	http.StatusBadRequest,
)

// --- Notifications ---

var ErrNotificationNotFound = New(CodeNotFound, "notification", "Notification not found", http.StatusNotFound)

// --- Transport ---

var ErrRateLimited = New(
	CodeLimitExceeded,
	"request",
	"Too many requests, slow down",
	http.StatusTooManyRequests,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)
