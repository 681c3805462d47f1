package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mykocapp/notifier/internal/model"
	"github.com/mykocapp/notifier/internal/push"
	"github.com/mykocapp/notifier/pkg/logger"
	"github.com/mykocapp/notifier/pkg/metrics"
)

type fakeStudents struct {
	byClass map[string][]*model.Student
	err     error
}

func (f *fakeStudents) ListByClass(_ context.Context, classID string) ([]*model.Student, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byClass[classID], nil
}

type fakeTokens struct {
	tokens map[string]string
	errFor map[string]error
}

func (f *fakeTokens) Get(_ context.Context, uid string) (string, error) {
	if err := f.errFor[uid]; err != nil {
		return "", err
	}
	return f.tokens[uid], nil
}

type fakeTasks struct {
	tasks []*model.Task
	err   error
	start time.Time
	end   time.Time
}

func (f *fakeTasks) ListDueBetween(_ context.Context, start, end time.Time) ([]*model.Task, error) {
	f.start, f.end = start, end
	if f.err != nil {
		return nil, f.err
	}
	var due []*model.Task
	for _, task := range f.tasks {
		if !task.DueDate.Before(start) && !task.DueDate.After(end) {
			due = append(due, task)
		}
	}
	return due, nil
}

type fakeNotes struct {
	notes []*model.CalendarNote
	err   error
	start time.Time
	end   time.Time
}

func (f *fakeNotes) ListBetween(_ context.Context, start, end time.Time) ([]*model.CalendarNote, error) {
	f.start, f.end = start, end
	if f.err != nil {
		return nil, f.err
	}
	var in []*model.CalendarNote
	for _, note := range f.notes {
		if !note.Date.Before(start) && !note.Date.After(end) {
			in = append(in, note)
		}
	}
	return in, nil
}

type fakeRooms struct {
	rooms map[string]*model.ChatRoom
	err   error
}

func (f *fakeRooms) Get(_ context.Context, roomID string) (*model.ChatRoom, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rooms[roomID], nil
}

type fakeUsers struct {
	active map[string]string
	errFor map[string]error
}

func (f *fakeUsers) ActiveChatRoom(_ context.Context, uid string) (string, error) {
	if err := f.errFor[uid]; err != nil {
		return "", err
	}
	return f.active[uid], nil
}

type singleSend struct {
	token string
	msg   push.Message
}

type multicastSend struct {
	tokens []string
	msg    push.Message
}

type fakeSender struct {
	sends      []singleSend
	multicasts []multicastSend
	sendErrFor map[string]error
	multiErr   error
}

func (f *fakeSender) Send(_ context.Context, token string, msg push.Message) error {
	if err := f.sendErrFor[token]; err != nil {
		return err
	}
	f.sends = append(f.sends, singleSend{token: token, msg: msg})
	return nil
}

func (f *fakeSender) SendMulticast(_ context.Context, tokens []string, msg push.Message) error {
	if f.multiErr != nil {
		return f.multiErr
	}
	f.multicasts = append(f.multicasts, multicastSend{tokens: tokens, msg: msg})
	return nil
}

type fakeBroker struct {
	published []interface{}
	err       error
}

func (f *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

type fixture struct {
	students *fakeStudents
	tokens   *fakeTokens
	tasks    *fakeTasks
	notes    *fakeNotes
	rooms    *fakeRooms
	users    *fakeUsers
	sender   *fakeSender
	broker   *fakeBroker
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		students: &fakeStudents{byClass: map[string][]*model.Student{}},
		tokens:   &fakeTokens{tokens: map[string]string{}, errFor: map[string]error{}},
		tasks:    &fakeTasks{},
		notes:    &fakeNotes{},
		rooms:    &fakeRooms{rooms: map[string]*model.ChatRoom{}},
		users:    &fakeUsers{active: map[string]string{}, errFor: map[string]error{}},
		sender:   &fakeSender{sendErrFor: map[string]error{}},
		broker:   &fakeBroker{},
	}
	f.svc = NewService(
		f.students, f.tokens, f.tasks, f.notes, f.rooms, f.users,
		f.sender, f.broker, logger.Nop(), metrics.New("test"),
	)
	return f
}

func TestAnnouncementFanOut(t *testing.T) {
	f := newFixture()
	f.students.byClass["class-9a"] = []*model.Student{
		{UID: "u1", ClassID: "class-9a"},
		{UID: "u2", ClassID: "class-9a"},
		{UID: "u3", ClassID: "class-9a"},
	}
	f.tokens.tokens["u1"] = "tok-1"
	f.tokens.tokens["u3"] = "tok-3"

	summary := f.svc.HandleAnnouncementWritten(context.Background(), model.AnnouncementEvent{
		ID:    "ann-1",
		After: &model.Announcement{Title: "Exam", Description: "Friday", ClassID: "class-9a"},
	})

	require.Len(t, f.sender.multicasts, 1)
	mc := f.sender.multicasts[0]
	assert.ElementsMatch(t, []string{"tok-1", "tok-3"}, mc.tokens)
	assert.Equal(t, "📣 New Announcement!", mc.msg.Title)
	assert.Equal(t, "Exam\nFriday", mc.msg.Body)
	assert.Equal(t, "announcement", mc.msg.Data["type"])
	assert.Equal(t, "class-9a", mc.msg.Data["classId"])

	assert.Equal(t, 2, summary.Sent())
	assert.Len(t, summary.Outcomes, 3) // u2 recorded as no_token
}

func TestAnnouncementUpdateUsesUpdateTitle(t *testing.T) {
	f := newFixture()
	f.students.byClass["c1"] = []*model.Student{{UID: "u1", ClassID: "c1"}}
	f.tokens.tokens["u1"] = "tok-1"

	f.svc.HandleAnnouncementWritten(context.Background(), model.AnnouncementEvent{
		ID:     "ann-1",
		Before: &model.Announcement{Title: "old", ClassID: "c1"},
		After:  &model.Announcement{Title: "new", ClassID: "c1"},
	})

	require.Len(t, f.sender.multicasts, 1)
	assert.Equal(t, "📣 Announcement Update", f.sender.multicasts[0].msg.Title)
}

func TestAnnouncementDeletionIsNoOp(t *testing.T) {
	f := newFixture()

	summary := f.svc.HandleAnnouncementWritten(context.Background(), model.AnnouncementEvent{
		ID:     "ann-1",
		Before: &model.Announcement{Title: "old", ClassID: "c1"},
		After:  nil,
	})

	assert.Empty(t, f.sender.multicasts)
	assert.Empty(t, summary.Outcomes)
}

func TestAnnouncementWithoutTokensSendsNothing(t *testing.T) {
	f := newFixture()
	f.students.byClass["c1"] = []*model.Student{
		{UID: "u1", ClassID: "c1"},
		{UID: "u2", ClassID: "c1"},
	}

	summary := f.svc.HandleAnnouncementWritten(context.Background(), model.AnnouncementEvent{
		ID:    "ann-1",
		After: &model.Announcement{Title: "t", ClassID: "c1"},
	})

	assert.Empty(t, f.sender.multicasts)
	assert.Equal(t, 0, summary.Sent())
	for _, o := range summary.Outcomes {
		assert.Equal(t, ResultNoToken, o.Result)
	}
}

func TestAnnouncementFetchFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.students.err = errors.New("store unavailable")

	var summary *Summary
	assert.NotPanics(t, func() {
		summary = f.svc.HandleAnnouncementWritten(context.Background(), model.AnnouncementEvent{
			ID:    "ann-1",
			After: &model.Announcement{Title: "t", ClassID: "c1"},
		})
	})

	assert.Empty(t, f.sender.multicasts)
	assert.Equal(t, "store unavailable", summary.Error)
}

func TestTaskCreatedNotifiesAssignees(t *testing.T) {
	f := newFixture()
	f.tokens.tokens["u1"] = "tok-1"
	f.tokens.tokens["u2"] = "tok-2"

	summary := f.svc.HandleTaskCreated(context.Background(), model.TaskEvent{
		ID: "task-1",
		Task: model.Task{
			Title:            "Essay",
			Description:      "Write 500 words",
			AssignedStudents: []string{"u1", "u2"},
		},
	})

	require.Len(t, f.sender.multicasts, 1)
	mc := f.sender.multicasts[0]
	assert.Len(t, mc.tokens, 2)
	assert.Equal(t, "📅 New Task Assigned!", mc.msg.Title)
	assert.Equal(t, "Essay\nWrite 500 words", mc.msg.Body)
	assert.Equal(t, "task", mc.msg.Data["type"])
	assert.Equal(t, "task-1", mc.msg.Data["taskId"])
	assert.Equal(t, 2, summary.Sent())
}

func TestTaskWithoutAssigneesIsNoOp(t *testing.T) {
	f := newFixture()

	summary := f.svc.HandleTaskCreated(context.Background(), model.TaskEvent{
		ID:   "task-1",
		Task: model.Task{Title: "Essay"},
	})

	assert.Empty(t, f.sender.multicasts)
	assert.Empty(t, summary.Outcomes)
}

func TestTaskMulticastFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.tokens.tokens["u1"] = "tok-1"
	f.sender.multiErr = errors.New("fcm rejected the batch")

	var summary *Summary
	assert.NotPanics(t, func() {
		summary = f.svc.HandleTaskCreated(context.Background(), model.TaskEvent{
			ID:   "task-1",
			Task: model.Task{Title: "Essay", AssignedStudents: []string{"u1"}},
		})
	})

	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, ResultFailed, summary.Outcomes[0].Result)
	assert.Equal(t, 0, summary.Sent())
}

func TestMessageFanOutExcludesSenderAndActiveViewer(t *testing.T) {
	f := newFixture()
	f.rooms.rooms["room-1"] = &model.ChatRoom{
		ID:             "room-1",
		Name:           "Class 9A",
		Type:           model.ChatRoomTypeGroup,
		ParticipantIDs: []string{"u1", "u2", "u3"},
	}
	f.users.active["u2"] = "room-1"
	f.tokens.tokens["u2"] = "tok-2"
	f.tokens.tokens["u3"] = "tok-3"

	summary := f.svc.HandleMessageCreated(context.Background(), model.MessageEvent{
		RoomID:    "room-1",
		MessageID: "m1",
		Message:   model.ChatMessage{SenderID: "u1", SenderName: "Ayşe", MessageText: "hi all"},
	})

	require.Len(t, f.sender.sends, 1)
	send := f.sender.sends[0]
	assert.Equal(t, "tok-3", send.token)
	assert.Equal(t, "Class 9A", send.msg.Title)
	assert.Equal(t, "hi all", send.msg.Body)
	assert.Equal(t, "chat", send.msg.Data["type"])
	assert.Equal(t, "room-1", send.msg.Data["chatRoomId"])
	assert.Equal(t, "room-1", send.msg.CollapseTag)

	assert.Equal(t, 1, summary.Sent())
	results := map[string]Result{}
	for _, o := range summary.Outcomes {
		results[o.UID] = o.Result
	}
	assert.Equal(t, ResultSuppressed, results["u2"])
	assert.Equal(t, ResultSent, results["u3"])
	assert.NotContains(t, results, "u1") // sender never notified
}

func TestMessageInDirectRoomUsesSenderName(t *testing.T) {
	f := newFixture()
	f.rooms.rooms["room-2"] = &model.ChatRoom{
		ID:             "room-2",
		Name:           "",
		Type:           model.ChatRoomTypeDirect,
		ParticipantIDs: []string{"u1", "u2"},
	}
	f.tokens.tokens["u2"] = "tok-2"

	f.svc.HandleMessageCreated(context.Background(), model.MessageEvent{
		RoomID:  "room-2",
		Message: model.ChatMessage{SenderID: "u1", SenderName: "Ayşe", MessageText: "selam"},
	})

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, "Ayşe", f.sender.sends[0].msg.Title)
}

func TestMessageWithFileUsesPlaceholderBody(t *testing.T) {
	f := newFixture()
	f.rooms.rooms["room-2"] = &model.ChatRoom{
		ID:             "room-2",
		Type:           model.ChatRoomTypeDirect,
		ParticipantIDs: []string{"u1", "u2"},
	}
	f.tokens.tokens["u2"] = "tok-2"

	f.svc.HandleMessageCreated(context.Background(), model.MessageEvent{
		RoomID: "room-2",
		Message: model.ChatMessage{
			SenderID:   "u1",
			SenderName: "Ayşe",
			FileURL:    "https://files.example.com/a.pdf",
		},
	})

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, "📎 Sent a file", f.sender.sends[0].msg.Body)
}

func TestMessageInMissingRoomIsNoOp(t *testing.T) {
	f := newFixture()

	summary := f.svc.HandleMessageCreated(context.Background(), model.MessageEvent{
		RoomID:  "gone",
		Message: model.ChatMessage{SenderID: "u1"},
	})

	assert.Empty(t, f.sender.sends)
	assert.Empty(t, summary.Outcomes)
	assert.Empty(t, summary.Error)
}

func TestMessageSendFailureDoesNotBlockOthers(t *testing.T) {
	f := newFixture()
	f.rooms.rooms["room-1"] = &model.ChatRoom{
		ID:             "room-1",
		Type:           model.ChatRoomTypeDirect,
		ParticipantIDs: []string{"u1", "u2", "u3"},
	}
	f.tokens.tokens["u2"] = "tok-2"
	f.tokens.tokens["u3"] = "tok-3"
	f.sender.sendErrFor["tok-2"] = errors.New("token rejected")

	summary := f.svc.HandleMessageCreated(context.Background(), model.MessageEvent{
		RoomID:  "room-1",
		Message: model.ChatMessage{SenderID: "u1", SenderName: "Ayşe", MessageText: "hi"},
	})

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, "tok-3", f.sender.sends[0].token)
	assert.Equal(t, 1, summary.Sent())
}

func TestDailyReminderWindowIsInclusive(t *testing.T) {
	f := newFixture()
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	now := time.Date(2024, 11, 5, 6, 0, 0, 0, loc)
	start, end := dayWindow(now)

	f.notes.notes = []*model.CalendarNote{
		{UserID: "u1", Content: "at start", Date: start},
		{UserID: "u2", Content: "at end", Date: end},
		{UserID: "u3", Content: "tomorrow", Date: start.Add(24 * time.Hour)},
	}
	f.tokens.tokens["u1"] = "tok-1"
	f.tokens.tokens["u2"] = "tok-2"
	f.tokens.tokens["u3"] = "tok-3"

	f.svc.RunDailyReminder(context.Background(), now)

	require.Len(t, f.sender.sends, 2)
	assert.Equal(t, "tok-1", f.sender.sends[0].token)
	assert.Equal(t, "📝 Note for Today", f.sender.sends[0].msg.Title)
	assert.Equal(t, "at start", f.sender.sends[0].msg.Body)
	assert.Equal(t, "calendar", f.sender.sends[0].msg.Data["type"])
	assert.Equal(t, "tok-2", f.sender.sends[1].token)

	// The repositories were queried with the window the service computed.
	assert.Equal(t, start, f.notes.start)
	assert.Equal(t, end, f.notes.end)
	assert.Equal(t, start, f.tasks.start)
	assert.Equal(t, end, f.tasks.end)
}

func TestDailyReminderNotifiesTaskAssigneesIndividually(t *testing.T) {
	f := newFixture()
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	now := time.Date(2024, 11, 5, 6, 0, 0, 0, loc)

	f.tasks.tasks = []*model.Task{
		{
			ID:               "task-1",
			Title:            "Essay",
			DueDate:          time.Date(2024, 11, 5, 17, 0, 0, 0, loc),
			AssignedStudents: []string{"u1", "u2", "u3"},
		},
	}
	f.tokens.tokens["u1"] = "tok-1"
	f.tokens.tokens["u3"] = "tok-3"
	f.tokens.errFor["u2"] = errors.New("store timeout")

	summary := f.svc.RunDailyReminder(context.Background(), now)

	// u2's lookup failure does not block u3.
	require.Len(t, f.sender.sends, 2)
	assert.Equal(t, `"Essay" is due today.`, f.sender.sends[0].msg.Body)
	assert.Equal(t, "⏳ Task Due Today!", f.sender.sends[0].msg.Title)
	assert.Equal(t, "task", f.sender.sends[0].msg.Data["type"])

	results := map[string]Result{}
	for _, o := range summary.Outcomes {
		results[o.UID] = o.Result
	}
	assert.Equal(t, ResultSent, results["u1"])
	assert.Equal(t, ResultFailed, results["u2"])
	assert.Equal(t, ResultSent, results["u3"])
}

func TestDailyReminderNoteFetchFailureStillProcessesTasks(t *testing.T) {
	f := newFixture()
	loc, _ := time.LoadLocation("Europe/Istanbul")
	now := time.Date(2024, 11, 5, 6, 0, 0, 0, loc)

	f.notes.err = errors.New("store unavailable")
	f.tasks.tasks = []*model.Task{
		{ID: "task-1", Title: "Essay", DueDate: now, AssignedStudents: []string{"u1"}},
	}
	f.tokens.tokens["u1"] = "tok-1"

	var summary *Summary
	assert.NotPanics(t, func() {
		summary = f.svc.RunDailyReminder(context.Background(), now)
	})

	require.Len(t, f.sender.sends, 1)
	assert.Equal(t, 1, summary.Sent())
	assert.Equal(t, "store unavailable", summary.Error)
}

func TestOutcomeSummaryIsPublished(t *testing.T) {
	f := newFixture()
	f.tokens.tokens["u1"] = "tok-1"

	f.svc.HandleTaskCreated(context.Background(), model.TaskEvent{
		ID:   "task-1",
		Task: model.Task{Title: "Essay", AssignedStudents: []string{"u1"}},
	})

	require.Len(t, f.broker.published, 1)
	summary, ok := f.broker.published[0].(*Summary)
	require.True(t, ok)
	assert.Equal(t, "task_created", summary.Event)
}

func TestBrokerFailureNeverAffectsDelivery(t *testing.T) {
	f := newFixture()
	f.broker.err = errors.New("redis down")
	f.tokens.tokens["u1"] = "tok-1"

	var summary *Summary
	assert.NotPanics(t, func() {
		summary = f.svc.HandleTaskCreated(context.Background(), model.TaskEvent{
			ID:   "task-1",
			Task: model.Task{Title: "Essay", AssignedStudents: []string{"u1"}},
		})
	})

	assert.Equal(t, 1, summary.Sent())
}
