package models

import "strings"

type UserRole string
type JobStatus string
type ApplicationStatus string
type InterviewStatus string
type InterviewKind string
type MessageKind string

const (
	UserRoleJobSeeker UserRole = "job_seeker"
	UserRoleRecruiter UserRole = "recruiter"
	UserRoleAdmin     UserRole = "admin"

	JobStatusOpen   JobStatus = "open"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"

	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"

	InterviewStatusPending   InterviewStatus = "pending"
	InterviewStatusScheduled InterviewStatus = "scheduled"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusCancelled InterviewStatus = "cancelled"

	InterviewKindInterview   InterviewKind = "interview"
	InterviewKindWrittenExam InterviewKind = "written_exam"

	MessageKindText      MessageKind = "text"
	MessageKindInterview MessageKind = "interview"
	MessageKindImage     MessageKind = "image"
	MessageKindFile      MessageKind = "file"
	MessageKindSystem    MessageKind = "system"
)

// ParseApplicationStatus lowercases s and reports whether it is a known status.
func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return status, true
	}
	return status, false
}

// CanTransitionTo: статус движется только вперед.
// withdrawn конечный, в pending вернуться нельзя, rejected -> accepted запрещен.
// Повтор того же статуса допустим (повторный accept переиспользует диалог).
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ApplicationStatusPending:
		return next == ApplicationStatusAccepted || next == ApplicationStatusRejected || next == ApplicationStatusWithdrawn
	case ApplicationStatusAccepted:
		return next == ApplicationStatusRejected || next == ApplicationStatusWithdrawn
	case ApplicationStatusRejected:
		return next == ApplicationStatusWithdrawn
	}
	return false
}

func (k InterviewKind) Valid() bool {
	return k == InterviewKindInterview || k == InterviewKindWrittenExam
}

// Label - "interview" / "written exam" для текстов уведомлений и писем
func (k InterviewKind) Label() string {
	if k == InterviewKindWrittenExam {
		return "written exam"
	}
	return "interview"
}

func (k MessageKind) Valid() bool {
	switch k {
	case MessageKindText, MessageKindInterview, MessageKindImage, MessageKindFile, MessageKindSystem:
		return true
	}
	return false
}
