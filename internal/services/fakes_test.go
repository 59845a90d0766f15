package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/models/chat"
	"jobportal_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// In-memory реализации репозиториев: *gorm.DB игнорируется, тестам он передается как nil.

type fakeUsers struct {
	users map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
}

func newFakeJobs(jobs ...*models.Job) *fakeJobs {
	f := &fakeJobs{jobs: map[string]*models.Job{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) FindByID(_ *gorm.DB, id string) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	cp := *j
	cp.ApplicationIDs = append([]string(nil), j.ApplicationIDs...)
	return &cp, nil
}

func (f *fakeJobs) CloseExpired(_ *gorm.DB, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, j := range f.jobs {
		if j.Status == models.JobStatusOpen && j.DeadlinePassed(now) {
			j.Status = models.JobStatusClosed
			n++
		}
	}
	return n, nil
}

type fakeApplications struct {
	mu    sync.Mutex
	order []string
	apps  map[string]*models.Application
	jobs  *fakeJobs
	users *fakeUsers

	updateErr error
}

func newFakeApplications(jobs *fakeJobs, users *fakeUsers) *fakeApplications {
	return &fakeApplications{apps: map[string]*models.Application{}, jobs: jobs, users: users}
}

func (f *fakeApplications) load(a *models.Application, withJob, withApplicant bool) models.Application {
	cp := *a
	cp.Job, cp.Applicant = nil, nil
	if withJob {
		if j, err := f.jobs.FindByID(nil, a.JobID); err == nil {
			cp.Job = j
		}
	}
	if withApplicant && f.users != nil {
		if u, err := f.users.FindByID(nil, a.ApplicantID); err == nil {
			cp.Applicant = u
		}
	}
	return cp
}

func (f *fakeApplications) CreateForJob(_ *gorm.DB, a *models.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == a.JobID && existing.ApplicantID == a.ApplicantID {
			return repositories.ErrApplicationExists
		}
	}
	f.jobs.mu.Lock()
	job, ok := f.jobs.jobs[a.JobID]
	if !ok {
		f.jobs.mu.Unlock()
		return repositories.ErrJobNotFound
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	job.ApplicationIDs = append(job.ApplicationIDs, a.ID)
	f.jobs.mu.Unlock()

	cp := *a
	f.apps[a.ID] = &cp
	f.order = append(f.order, a.ID)
	return nil
}

func (f *fakeApplications) put(a *models.Application) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.apps[a.ID] = &cp
	f.order = append(f.order, a.ID)
}

func (f *fakeApplications) get(id string) *models.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.apps[id]
	return &cp
}

func (f *fakeApplications) ExistsForApplicant(_ *gorm.DB, jobID, applicantID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplications) FindByID(_ *gorm.DB, id string) (*models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	cp := f.load(a, true, false)
	return &cp, nil
}

func (f *fakeApplications) FindByIDs(_ *gorm.DB, ids []string) ([]models.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Application
	for _, id := range ids {
		if a, ok := f.apps[id]; ok {
			out = append(out, f.load(a, true, false))
		}
	}
	return out, nil
}

func (f *fakeApplications) filter(keep func(*models.Application) bool, withJob, withApplicant bool) []models.Application {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Application
	// новые сверху, как ORDER BY created_at DESC
	for i := len(f.order) - 1; i >= 0; i-- {
		a := f.apps[f.order[i]]
		if keep(a) {
			out = append(out, f.load(a, withJob, withApplicant))
		}
	}
	return out
}

func (f *fakeApplications) FindByJob(_ *gorm.DB, jobID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool { return a.JobID == jobID }, false, true), nil
}

func (f *fakeApplications) FindByApplicant(_ *gorm.DB, applicantID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool { return a.ApplicantID == applicantID }, true, false), nil
}

func (f *fakeApplications) FindScheduledByApplicant(_ *gorm.DB, applicantID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool {
		return a.ApplicantID == applicantID && a.InterviewStatus == models.InterviewStatusScheduled
	}, true, false), nil
}

func (f *fakeApplications) FindAcceptedByRecruiter(_ *gorm.DB, recruiterID string) ([]models.Application, error) {
	return f.filter(func(a *models.Application) bool {
		j, err := f.jobs.FindByID(nil, a.JobID)
		return err == nil && j.CreatedBy == recruiterID && a.Status == models.ApplicationStatusAccepted
	}, true, true), nil
}

func (f *fakeApplications) FindDueReminders(_ *gorm.DB, from, to time.Time) ([]models.Application, error) {
	out := f.filter(func(a *models.Application) bool {
		if a.InterviewStatus != models.InterviewStatusScheduled || a.Interview.ReminderSent || a.Interview.StartTime == nil {
			return false
		}
		st := *a.Interview.StartTime
		return !st.Before(from) && st.Before(to)
	}, true, true)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Interview.StartTime.Before(*out[j].Interview.StartTime) })
	return out, nil
}

func (f *fakeApplications) UpdateStatus(_ *gorm.DB, id string, status models.ApplicationStatus, conversationID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	a.Status = status
	if conversationID != nil {
		id := *conversationID
		a.ConversationID = &id
	}
	return nil
}

func (f *fakeApplications) SetConversation(_ *gorm.DB, id, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	a.ConversationID = &conversationID
	return nil
}

func (f *fakeApplications) SaveInterview(_ *gorm.DB, id string, interview models.Interview) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	interview.ReminderSent = false
	a.Interview = interview
	a.InterviewStatus = models.InterviewStatusScheduled
	return nil
}

func (f *fakeApplications) MarkReminderSent(_ *gorm.DB, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok || a.Interview.ReminderSent {
		return false, nil
	}
	a.Interview.ReminderSent = true
	return true, nil
}

type fakeConversations struct {
	mu       sync.Mutex
	byID     map[string]*chat.Conversation
	byKey    map[string]string
	messages map[string][]chat.Message
	upsertFn func() error
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{
		byID:     map[string]*chat.Conversation{},
		byKey:    map[string]string{},
		messages: map[string][]chat.Message{},
	}
}

func (f *fakeConversations) UpsertPair(_ *gorm.DB, a, b string) (*chat.Conversation, bool, error) {
	if f.upsertFn != nil {
		if err := f.upsertFn(); err != nil {
			return nil, false, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := chat.PairKey(a, b)
	if id, ok := f.byKey[key]; ok {
		cp := *f.byID[id]
		return &cp, false, nil
	}
	ids := []string{a, b}
	sort.Strings(ids)
	c := &chat.Conversation{ID: uuid.NewString(), Participants: ids, PairKey: key, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.byID[c.ID] = c
	f.byKey[key] = c.ID
	cp := *c
	return &cp, true, nil
}

func (f *fakeConversations) FindByID(_ *gorm.DB, id string, withMessages bool) (*chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrConversationNotFound
	}
	cp := *c
	if withMessages {
		cp.Messages = append([]chat.Message(nil), f.messages[id]...)
	}
	return &cp, nil
}

func (f *fakeConversations) FindByUser(_ *gorm.DB, userID string) ([]chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Conversation
	for _, c := range f.byID {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeConversations) AppendMessage(_ *gorm.DB, m *chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[m.ConversationID]
	if !ok {
		return repositories.ErrConversationNotFound
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	f.messages[c.ID] = append(f.messages[c.ID], *m)
	c.LastMessage = m.Preview()
	c.UpdatedAt = m.CreatedAt
	return nil
}

type fakeNotifications struct {
	mu        sync.Mutex
	items     []models.Notification
	createErr error
}

func (f *fakeNotifications) Create(_ *gorm.DB, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) forUser(userID string) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			out = append(out, f.items[i])
		}
	}
	return out
}

func (f *fakeNotifications) FindByUser(_ *gorm.DB, userID string, c repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	all := f.forUser(userID)
	if c.UnreadOnly {
		var unread []models.Notification
		for _, n := range all {
			if !n.IsRead {
				unread = append(unread, n)
			}
		}
		all = unread
	}
	total := int64(len(all))
	start := (c.Page - 1) * c.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + c.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeNotifications) MarkAsRead(_ *gorm.DB, userID, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &at
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (f *fakeNotifications) MarkAllAsRead(_ *gorm.DB, userID string, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.items {
		if f.items[i].UserID == userID && !f.items[i].IsRead {
			f.items[i].IsRead = true
			f.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) UnreadCount(_ *gorm.DB, userID string) (int64, error) {
	var n int64
	for _, item := range f.forUser(userID) {
		if !item.IsRead {
			n++
		}
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	UserID string
	Event  string
}

func (p *recordingPublisher) PublishToUser(userID, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event})
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendInterviewScheduled(ctx context.Context, msg InterviewEmail) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMailer) SendInterviewReminder(ctx context.Context, msg InterviewEmail) error {
	return m.Called(ctx, msg).Error(0)
}

type stubMeetings struct {
	err error
}

func (s stubMeetings) CreateMeeting(ctx context.Context, title string, start time.Time, d time.Duration) (*Meeting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return NewPlaceholderMeetingProvider("https://meet.example.com").CreateMeeting(ctx, title, start, d)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T {
	return &v
}
