package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/models"
	"jobportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type applicationFixture struct {
	users   *fakeUsers
	jobs    *fakeJobs
	apps    *fakeApplications
	convs   *fakeConversations
	notifs  *fakeNotifications
	service ApplicationService
}

func newApplicationFixture() *applicationFixture {
	grade := 4.5
	users := newFakeUsers(
		&models.User{BaseModel: models.BaseModel{ID: "seeker-1"}, Fullname: "Ann Seeker", Email: "ann@example.com", Role: models.UserRoleJobSeeker, Grade: &grade},
		&models.User{BaseModel: models.BaseModel{ID: "seeker-2"}, Fullname: "Bob Seeker", Role: models.UserRoleJobSeeker},
		&models.User{BaseModel: models.BaseModel{ID: "banned"}, Fullname: "Mallory", Role: models.UserRoleJobSeeker, IsBanned: true},
		&models.User{BaseModel: models.BaseModel{ID: "recruiter-1"}, Fullname: "Rita Recruiter", Role: models.UserRoleRecruiter},
		&models.User{BaseModel: models.BaseModel{ID: "recruiter-2"}, Fullname: "Other Recruiter", Role: models.UserRoleRecruiter},
	)
	jobs := newFakeJobs(
		&models.Job{BaseModel: models.BaseModel{ID: "job-1"}, Title: "Go Developer", CreatedBy: "recruiter-1", Status: models.JobStatusOpen, ApplicationDeadline: ptr(testNow.Add(48 * time.Hour))},
		&models.Job{BaseModel: models.BaseModel{ID: "job-2"}, Title: "Data Engineer", CreatedBy: "recruiter-2", Status: models.JobStatusOpen},
		&models.Job{BaseModel: models.BaseModel{ID: "job-expired"}, Title: "Old Job", CreatedBy: "recruiter-1", Status: models.JobStatusOpen, ApplicationDeadline: ptr(testNow.Add(-time.Hour))},
	)
	apps := newFakeApplications(jobs, users)
	convs := newFakeConversations()
	notifs := &fakeNotifications{}

	notificationService := NewNotificationService(notifs, nil, fixedClock(testNow))
	conversationService := NewConversationService(convs, notificationService, nil, fixedClock(testNow))

	return &applicationFixture{
		users:   users,
		jobs:    jobs,
		apps:    apps,
		convs:   convs,
		notifs:  notifs,
		service: NewApplicationService(apps, jobs, users, conversationService, notificationService, fixedClock(testNow)),
	}
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending application and notifies recruiter", func(t *testing.T) {
		f := newApplicationFixture()

		app, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		assert.NotEmpty(t, app.ID)
		assert.Equal(t, models.ApplicationStatusPending, app.Status)
		assert.Equal(t, models.InterviewStatusPending, app.InterviewStatus)

		job, _ := f.jobs.FindByID(nil, "job-1")
		assert.Contains(t, []string(job.ApplicationIDs), app.ID)

		notes := f.notifs.forUser("recruiter-1")
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationTypeApplication, notes[0].Type)
		assert.Equal(t, "Ann Seeker applied to your job: Go Developer", notes[0].Message)
	})

	t.Run("second application for the same job is rejected", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)

		_, err = f.service.Submit(ctx, nil, "seeker-1", "job-1")
		assert.ErrorIs(t, err, apperrors.ErrApplicationExists)

		job, _ := f.jobs.FindByID(nil, "job-1")
		assert.Len(t, job.ApplicationIDs, 1)
	})

	t.Run("banned user", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "banned", "job-1")
		assert.ErrorIs(t, err, apperrors.ErrUserBanned)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "ghost", "job-1")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode)
	})

	t.Run("empty job id", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "seeker-1", "  ")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	})

	t.Run("unknown job", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "seeker-1", "nope")
		assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	})

	t.Run("deadline passed", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.Submit(ctx, nil, "seeker-1", "job-expired")
		assert.ErrorIs(t, err, apperrors.ErrDeadlinePassed)
		assert.Empty(t, f.notifs.forUser("recruiter-1"))
	})

	t.Run("notification failure does not fail the application", func(t *testing.T) {
		f := newApplicationFixture()
		f.notifs.createErr = errors.New("db down")

		app, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		assert.NotEmpty(t, app.ID)
	})
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*applicationFixture, string) {
		f := newApplicationFixture()
		app, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		return f, app.ID
	}

	t.Run("accept creates conversation and notifies applicant", func(t *testing.T) {
		f, id := setup(t)

		app, convID, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		require.NoError(t, err)
		require.NotNil(t, convID)
		assert.Equal(t, models.ApplicationStatusAccepted, app.Status)

		stored := f.apps.get(id)
		require.NotNil(t, stored.ConversationID)
		assert.Equal(t, *convID, *stored.ConversationID)

		conv, err := f.convs.FindByID(nil, *convID, false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"seeker-1", "recruiter-1"}, []string(conv.Participants))

		notes := f.notifs.forUser("seeker-1")
		require.Len(t, notes, 1)
		assert.Equal(t, models.NotificationTypeStatusUpdate, notes[0].Type)
		assert.Contains(t, notes[0].Message, "accepted")
		assert.Contains(t, string(notes[0].Data), *convID)
	})

	t.Run("status is case insensitive", func(t *testing.T) {
		f, id := setup(t)
		app, convID, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "REJECTED")
		require.NoError(t, err)
		assert.Nil(t, convID)
		assert.Equal(t, models.ApplicationStatusRejected, app.Status)
		assert.Equal(t, "Your application for Go Developer was rejected", f.notifs.forUser("seeker-1")[0].Message)
	})

	t.Run("accepting twice reuses the conversation", func(t *testing.T) {
		f, id := setup(t)
		_, first, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		require.NoError(t, err)
		_, second, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		require.NoError(t, err)
		assert.Equal(t, *first, *second)
		assert.Len(t, f.convs.byID, 1)
	})

	t.Run("conversation failure keeps status update", func(t *testing.T) {
		f, id := setup(t)
		f.convs.upsertFn = func() error { return errors.New("chat schema missing") }

		app, convID, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		require.NoError(t, err)
		assert.Nil(t, convID)
		assert.Equal(t, models.ApplicationStatusAccepted, app.Status)
		assert.Nil(t, f.apps.get(id).ConversationID)
	})

	t.Run("invalid status", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "hired")
		assert.ErrorIs(t, err, apperrors.ErrInvalidApplicationStatus)
	})

	t.Run("empty status", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "")
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	})

	t.Run("other recruiter is forbidden", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "recruiter-2", id, "accepted")
		assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)
		assert.Equal(t, models.ApplicationStatusPending, f.apps.get(id).Status)
	})

	t.Run("applicant may only withdraw", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "seeker-1", id, "accepted")
		assert.ErrorIs(t, err, apperrors.ErrApplicantWithdrawOnly)

		app, _, err := f.service.UpdateStatus(ctx, nil, "seeker-1", id, "withdrawn")
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationStatusWithdrawn, app.Status)
	})

	t.Run("applicant gets forbidden even for an unknown status", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "seeker-1", id, "hired")
		assert.ErrorIs(t, err, apperrors.ErrApplicantWithdrawOnly)
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, appErr.HTTPCode)
		assert.Equal(t, models.ApplicationStatusPending, f.apps.get(id).Status)
	})

	t.Run("withdrawn is final", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "seeker-1", id, "withdrawn")
		require.NoError(t, err)
		notesBefore := len(f.notifs.forUser("seeker-1"))

		_, convID, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
		assert.Nil(t, convID)
		assert.Equal(t, models.ApplicationStatusWithdrawn, f.apps.get(id).Status)
		assert.Nil(t, f.apps.get(id).ConversationID)
		assert.Empty(t, f.convs.byID)
		assert.Len(t, f.notifs.forUser("seeker-1"), notesBefore)
	})

	t.Run("no way back to pending", func(t *testing.T) {
		f, id := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		require.NoError(t, err)

		_, _, err = f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "pending")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
		assert.Equal(t, models.ApplicationStatusAccepted, f.apps.get(id).Status)

		_, _, err = f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "rejected")
		require.NoError(t, err)
		_, _, err = f.service.UpdateStatus(ctx, nil, "recruiter-1", id, "accepted")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	})

	t.Run("unknown application", func(t *testing.T) {
		f, _ := setup(t)
		_, _, err := f.service.UpdateStatus(ctx, nil, "recruiter-1", "missing", "accepted")
		assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	})
}

func TestApplicationService_BulkUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates every application", func(t *testing.T) {
		f := newApplicationFixture()
		a1, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		a2, err := f.service.Submit(ctx, nil, "seeker-2", "job-1")
		require.NoError(t, err)

		results, err := f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{
			ApplicationIDs: []string{a1.ID, a2.ID},
			Status:         "accepted",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Empty(t, r.Error)
			assert.Equal(t, models.ApplicationStatusAccepted, r.Status)
			assert.NotNil(t, r.ConversationID)
		}
		assert.Len(t, f.convs.byID, 2)
	})

	t.Run("one foreign application rejects the whole batch", func(t *testing.T) {
		f := newApplicationFixture()
		mine, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		foreign, err := f.service.Submit(ctx, nil, "seeker-1", "job-2")
		require.NoError(t, err)

		_, err = f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{
			ApplicationIDs: []string{mine.ID, foreign.ID},
			Status:         "rejected",
		})
		assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)
		assert.Equal(t, models.ApplicationStatusPending, f.apps.get(mine.ID).Status)
		assert.Equal(t, models.ApplicationStatusPending, f.apps.get(foreign.ID).Status)
	})

	t.Run("per item failure is reported", func(t *testing.T) {
		f := newApplicationFixture()
		a1, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		f.apps.updateErr = errors.New("deadlock detected")

		results, err := f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{
			ApplicationIDs: []string{a1.ID},
			Status:         "rejected",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.NotEmpty(t, results[0].Error)
		assert.Equal(t, models.ApplicationStatusPending, results[0].Status)
	})

	t.Run("illegal transition is reported per item", func(t *testing.T) {
		f := newApplicationFixture()
		a1, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
		require.NoError(t, err)
		a2, err := f.service.Submit(ctx, nil, "seeker-2", "job-1")
		require.NoError(t, err)
		_, _, err = f.service.UpdateStatus(ctx, nil, "seeker-1", a1.ID, "withdrawn")
		require.NoError(t, err)

		results, err := f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{
			ApplicationIDs: []string{a1.ID, a2.ID},
			Status:         "rejected",
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		byID := map[string]dto.StatusUpdateResult{}
		for _, r := range results {
			byID[r.ApplicationID] = r
		}
		assert.Equal(t, models.ApplicationStatusWithdrawn, byID[a1.ID].Status)
		assert.Equal(t, apperrors.ErrInvalidStatusTransition.Message, byID[a1.ID].Error)
		assert.Equal(t, models.ApplicationStatusRejected, byID[a2.ID].Status)
		assert.Empty(t, byID[a2.ID].Error)
	})

	t.Run("validation", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{Status: "accepted"})
		assert.Error(t, err)

		_, err = f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{ApplicationIDs: []string{"x"}, Status: "maybe"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidApplicationStatus)

		_, err = f.service.BulkUpdateStatus(ctx, nil, "recruiter-1", &dto.BulkUpdateStatusRequest{ApplicationIDs: []string{"x"}, Status: "accepted"})
		assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	})
}

func TestApplicationService_GetApplicants(t *testing.T) {
	ctx := context.Background()
	f := newApplicationFixture()

	_, err := f.service.Submit(ctx, nil, "seeker-2", "job-1")
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, nil, "seeker-1", "job-1")
	require.NoError(t, err)

	res, err := f.service.GetApplicants(nil, "recruiter-1", "job-1")
	require.NoError(t, err)
	require.Len(t, res.Applications, 2)
	assert.Equal(t, "seeker-1", res.Applications[0].ApplicantID, "graded applicant comes first")
	assert.Equal(t, "seeker-2", res.Applications[1].ApplicantID)
	assert.Equal(t, "job-1", res.Job.ID)

	_, err = f.service.GetApplicants(nil, "recruiter-2", "job-1")
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)

	_, err = f.service.GetApplicants(nil, "recruiter-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestRankByGrade(t *testing.T) {
	withGrade := func(id string, g *float64) models.Application {
		return models.Application{BaseModel: models.BaseModel{ID: id}, Applicant: &models.User{Grade: g}}
	}
	apps := []models.Application{
		withGrade("none-1", nil),
		withGrade("low", ptr(2.0)),
		{BaseModel: models.BaseModel{ID: "no-user"}},
		withGrade("high", ptr(9.0)),
		withGrade("low-2", ptr(2.0)),
		withGrade("none-2", nil),
		withGrade("zero", ptr(0.0)),
	}

	RankByGrade(apps)

	var ids []string
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"high", "low", "low-2", "zero", "none-1", "no-user", "none-2"}, ids, "grade 0 ranks above a missing grade")
}

func TestApplicationService_Lists(t *testing.T) {
	ctx := context.Background()
	f := newApplicationFixture()

	a1, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, nil, "seeker-1", "job-2")
	require.NoError(t, err)
	_, _, err = f.service.UpdateStatus(ctx, nil, "recruiter-1", a1.ID, "accepted")
	require.NoError(t, err)

	applied, err := f.service.GetAppliedJobs(nil, "seeker-1")
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	for _, a := range applied {
		assert.NotNil(t, a.Job)
	}

	empty, err := f.service.GetAppliedJobs(nil, "seeker-2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	accepted, err := f.service.GetAcceptedApplicants(nil, "recruiter-1")
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, a1.ID, accepted[0].ID)
}

func TestApplicationService_OpenConversation(t *testing.T) {
	ctx := context.Background()
	f := newApplicationFixture()
	app, err := f.service.Submit(ctx, nil, "seeker-1", "job-1")
	require.NoError(t, err)

	conv, err := f.service.OpenConversation(ctx, nil, "recruiter-1", app.ID)
	require.NoError(t, err)
	require.NotNil(t, f.apps.get(app.ID).ConversationID)
	assert.Equal(t, conv.ID, *f.apps.get(app.ID).ConversationID)

	again, err := f.service.OpenConversation(ctx, nil, "recruiter-1", app.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)

	_, err = f.service.OpenConversation(ctx, nil, "recruiter-2", app.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)
}
