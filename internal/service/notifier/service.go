// Package notifier fans application-data events out into push notification
// deliveries. Every handler swallows fetch and send failures: the triggering
// write must never be affected by a notification problem, so failures are
// logged, counted, and recorded in the returned summary instead of being
// propagated.
package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mykocapp/notifier/internal/model"
	"github.com/mykocapp/notifier/internal/push"
	"github.com/mykocapp/notifier/internal/repository"
	"github.com/mykocapp/notifier/pkg/logger"
	"github.com/mykocapp/notifier/pkg/messaging"
	"github.com/mykocapp/notifier/pkg/metrics"
)

// outcomeChannel carries fan-out summaries for dashboards; fire-and-forget.
const outcomeChannel = "notifications.outcomes"

type Service struct {
	students repository.StudentRepository
	tokens   repository.TokenRepository
	tasks    repository.TaskRepository
	notes    repository.CalendarNoteRepository
	rooms    repository.ChatRoomRepository
	users    repository.UserRepository
	sender   push.Sender
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	students repository.StudentRepository,
	tokens repository.TokenRepository,
	tasks repository.TaskRepository,
	notes repository.CalendarNoteRepository,
	rooms repository.ChatRoomRepository,
	users repository.UserRepository,
	sender push.Sender,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		students: students,
		tokens:   tokens,
		tasks:    tasks,
		notes:    notes,
		rooms:    rooms,
		users:    users,
		sender:   sender,
		broker:   broker,
		logger:   log,
		metrics:  m,
	}
}

// HandleAnnouncementWritten reacts to a create or update of an announcement
// and multicasts to every student of the announcement's class that has a
// registered device token.
func (s *Service) HandleAnnouncementWritten(ctx context.Context, evt model.AnnouncementEvent) *Summary {
	summary := s.newSummary("announcement_written", evt.ID)
	defer s.finish(ctx, summary, prometheus.NewTimer(s.metrics.HandlerDuration.WithLabelValues("announcement")))

	if evt.After == nil {
		// Deletion, nothing to announce.
		return summary
	}
	ann := evt.After

	students, err := s.students.ListByClass(ctx, ann.ClassID)
	if err != nil {
		s.recordFailure(summary, typeAnnouncement, err, "class_id", ann.ClassID)
		return summary
	}
	if len(students) == 0 {
		return summary
	}

	var tokens []string
	var recipients []string
	for _, student := range students {
		token, err := s.tokens.Get(ctx, student.UID)
		if err != nil {
			s.recordRecipientFailure(summary, typeAnnouncement, student.UID, err)
			continue
		}
		if token == "" {
			s.recordNoToken(summary, student.UID)
			continue
		}
		tokens = append(tokens, token)
		recipients = append(recipients, student.UID)
	}
	if len(tokens) == 0 {
		return summary
	}

	msg := push.Message{
		Title: announcementTitle(evt.Before == nil),
		Body:  announcementBody(ann),
		Data: map[string]string{
			"type":    typeAnnouncement,
			"classId": ann.ClassID,
		},
	}
	s.multicast(ctx, summary, typeAnnouncement, recipients, tokens, msg)
	return summary
}

// HandleTaskCreated multicasts to every assignee of a newly created task.
func (s *Service) HandleTaskCreated(ctx context.Context, evt model.TaskEvent) *Summary {
	summary := s.newSummary("task_created", evt.ID)
	defer s.finish(ctx, summary, prometheus.NewTimer(s.metrics.HandlerDuration.WithLabelValues("task")))

	if len(evt.Task.AssignedStudents) == 0 {
		return summary
	}

	var tokens []string
	var recipients []string
	for _, uid := range evt.Task.AssignedStudents {
		token, err := s.tokens.Get(ctx, uid)
		if err != nil {
			s.recordRecipientFailure(summary, typeTask, uid, err)
			continue
		}
		if token == "" {
			s.recordNoToken(summary, uid)
			continue
		}
		tokens = append(tokens, token)
		recipients = append(recipients, uid)
	}
	if len(tokens) == 0 {
		return summary
	}

	msg := push.Message{
		Title: titleNewTask,
		Body:  taskBody(&evt.Task),
		Data: map[string]string{
			"type":   typeTask,
			"taskId": evt.ID,
		},
	}
	s.multicast(ctx, summary, typeTask, recipients, tokens, msg)
	return summary
}

// HandleMessageCreated notifies every room participant except the sender,
// skipping anyone who currently has the room open on their device.
func (s *Service) HandleMessageCreated(ctx context.Context, evt model.MessageEvent) *Summary {
	summary := s.newSummary("message_created", evt.RoomID)
	defer s.finish(ctx, summary, prometheus.NewTimer(s.metrics.HandlerDuration.WithLabelValues("message")))

	room, err := s.rooms.Get(ctx, evt.RoomID)
	if err != nil {
		s.recordFailure(summary, typeChat, err, "room_id", evt.RoomID)
		return summary
	}
	if room == nil {
		return summary
	}

	for _, uid := range room.ParticipantIDs {
		if uid == evt.Message.SenderID {
			continue
		}

		activeRoom, err := s.users.ActiveChatRoom(ctx, uid)
		if err != nil {
			s.recordRecipientFailure(summary, typeChat, uid, err)
			continue
		}
		if activeRoom == room.ID {
			s.metrics.NotificationsSuppressed.Inc()
			s.logger.Debug("notification suppressed, user is viewing the room", "uid", uid, "room_id", room.ID)
			summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultSuppressed})
			continue
		}

		token, err := s.tokens.Get(ctx, uid)
		if err != nil {
			s.recordRecipientFailure(summary, typeChat, uid, err)
			continue
		}
		if token == "" {
			s.recordNoToken(summary, uid)
			continue
		}

		msg := push.Message{
			Title: messageTitle(room, evt.Message.SenderName),
			Body:  messageBody(&evt.Message),
			Data: map[string]string{
				"type":       typeChat,
				"chatRoomId": room.ID,
			},
			CollapseTag: room.ID,
		}
		if err := s.sender.Send(ctx, token, msg); err != nil {
			s.recordRecipientFailure(summary, typeChat, uid, err)
			continue
		}
		s.metrics.NotificationsSent.WithLabelValues(typeChat, "single").Inc()
		summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultSent})
	}

	return summary
}

// RunDailyReminder notifies owners of today's calendar notes and assignees
// of tasks due today. The day window is derived from now in now's location;
// both bounds are inclusive.
func (s *Service) RunDailyReminder(ctx context.Context, now time.Time) *Summary {
	summary := s.newSummary("daily_reminder", now.Format("2006-01-02"))
	defer s.finish(ctx, summary, prometheus.NewTimer(s.metrics.HandlerDuration.WithLabelValues("reminder")))

	start, end := dayWindow(now)

	notes, err := s.notes.ListBetween(ctx, start, end)
	if err != nil {
		s.recordFailure(summary, typeCalendar, err)
	} else {
		for _, note := range notes {
			outcome := s.notifyUser(ctx, note.UserID, titleNoteToday, note.Content, typeCalendar)
			summary.Outcomes = append(summary.Outcomes, outcome)
		}
	}

	tasks, err := s.tasks.ListDueBetween(ctx, start, end)
	if err != nil {
		s.recordFailure(summary, typeTask, err)
		return summary
	}
	for _, task := range tasks {
		for _, uid := range task.AssignedStudents {
			outcome := s.notifyUser(ctx, uid, titleTaskDueToday, taskDueBody(task), typeTask)
			summary.Outcomes = append(summary.Outcomes, outcome)
		}
	}

	return summary
}

// notifyUser is the single-recipient path shared by the reminder job: one
// token lookup, one send, failures logged per recipient.
func (s *Service) notifyUser(ctx context.Context, uid, title, body, typeTag string) Outcome {
	token, err := s.tokens.Get(ctx, uid)
	if err != nil {
		s.metrics.DeliveryErrors.WithLabelValues(typeTag).Inc()
		s.logger.Error(err, "failed to resolve device token", "uid", uid)
		return Outcome{UID: uid, Result: ResultFailed, Error: err.Error()}
	}
	if token == "" {
		s.metrics.TokensMissing.Inc()
		return Outcome{UID: uid, Result: ResultNoToken}
	}

	msg := push.Message{
		Title: title,
		Body:  body,
		Data:  map[string]string{"type": typeTag},
	}
	if err := s.sender.Send(ctx, token, msg); err != nil {
		s.metrics.DeliveryErrors.WithLabelValues(typeTag).Inc()
		s.logger.Error(err, "failed to send notification", "uid", uid, "type", typeTag)
		return Outcome{UID: uid, Result: ResultFailed, Error: err.Error()}
	}

	s.metrics.NotificationsSent.WithLabelValues(typeTag, "single").Inc()
	return Outcome{UID: uid, Result: ResultSent}
}

// multicast issues one send covering all tokens. The platform's per-token
// partial failures are not inspected; one call either counts fully or fails
// fully from this service's perspective.
func (s *Service) multicast(ctx context.Context, summary *Summary, typeTag string, recipients, tokens []string, msg push.Message) {
	if err := s.sender.SendMulticast(ctx, tokens, msg); err != nil {
		s.metrics.DeliveryErrors.WithLabelValues(typeTag).Inc()
		s.logger.Error(err, "multicast send failed", "type", typeTag, "recipients", len(recipients))
		for _, uid := range recipients {
			summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultFailed, Error: err.Error()})
		}
		return
	}

	s.metrics.NotificationsSent.WithLabelValues(typeTag, "multicast").Add(float64(len(recipients)))
	for _, uid := range recipients {
		summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultSent})
	}
}

func (s *Service) newSummary(event, ref string) *Summary {
	return &Summary{
		ID:        uuid.New().String(),
		Event:     event,
		Ref:       ref,
		Timestamp: time.Now(),
	}
}

func (s *Service) finish(ctx context.Context, summary *Summary, timer *prometheus.Timer) {
	timer.ObserveDuration()

	if s.broker != nil {
		if err := s.broker.Publish(ctx, outcomeChannel, summary); err != nil {
			s.logger.Warn("failed to publish outcome summary", "event", summary.Event, "error", err.Error())
		}
	}

	s.logger.Info("handler finished",
		"event", summary.Event,
		"ref", summary.Ref,
		"recipients", len(summary.Outcomes),
		"sent", summary.Sent(),
	)
}

// recordFailure notes an event-level fetch failure: the handler gives up on
// this invocation but still completes normally.
func (s *Service) recordFailure(summary *Summary, typeTag string, err error, fields ...interface{}) {
	s.metrics.DeliveryErrors.WithLabelValues(typeTag).Inc()
	s.logger.Error(err, "handler fetch failed", append([]interface{}{"event", summary.Event}, fields...)...)
	summary.Error = err.Error()
}

func (s *Service) recordRecipientFailure(summary *Summary, typeTag, uid string, err error) {
	s.metrics.DeliveryErrors.WithLabelValues(typeTag).Inc()
	s.logger.Error(err, "recipient lookup or send failed", "uid", uid, "event", summary.Event)
	summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultFailed, Error: err.Error()})
}

func (s *Service) recordNoToken(summary *Summary, uid string) {
	s.metrics.TokensMissing.Inc()
	summary.Outcomes = append(summary.Outcomes, Outcome{UID: uid, Result: ResultNoToken})
}
