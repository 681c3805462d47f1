package repository

import (
	"context"
	"time"

	"github.com/mykocapp/notifier/internal/model"
)

// All repository interfaces in one file
type (
	// StudentRepository resolves announcement recipients by class.
	StudentRepository interface {
		ListByClass(ctx context.Context, classID string) ([]*model.Student, error)
	}

	// TokenRepository looks up the device token registered for a user.
	// A user with no registered token yields an empty string, not an error.
	TokenRepository interface {
		Get(ctx context.Context, uid string) (string, error)
	}

	// TaskRepository queries tasks by due date for the daily reminder job.
	TaskRepository interface {
		ListDueBetween(ctx context.Context, start, end time.Time) ([]*model.Task, error)
	}

	// CalendarNoteRepository queries calendar notes by date for the daily
	// reminder job. Both bounds are inclusive.
	CalendarNoteRepository interface {
		ListBetween(ctx context.Context, start, end time.Time) ([]*model.CalendarNote, error)
	}

	// ChatRoomRepository fetches a chat room by id. A missing room yields
	// nil, not an error.
	ChatRoomRepository interface {
		Get(ctx context.Context, roomID string) (*model.ChatRoom, error)
	}

	// UserRepository reads the chat room a user currently has open, if any.
	UserRepository interface {
		ActiveChatRoom(ctx context.Context, uid string) (string, error)
	}
)
