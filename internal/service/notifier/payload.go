package notifier

import (
	"fmt"
	"time"

	"github.com/mykocapp/notifier/internal/model"
)

// Notification texts shown in the device shade.
const (
	titleNewAnnouncement    = "📣 New Announcement!"
	titleAnnouncementUpdate = "📣 Announcement Update"
	titleNewTask            = "📅 New Task Assigned!"
	titleNoteToday          = "📝 Note for Today"
	titleTaskDueToday       = "⏳ Task Due Today!"
	bodyFileAttachment      = "📎 Sent a file"
)

// Data payload type tags consumed by the mobile client's router.
const (
	typeAnnouncement = "announcement"
	typeTask         = "task"
	typeCalendar     = "calendar"
	typeChat         = "chat"
)

func announcementTitle(isNew bool) string {
	if isNew {
		return titleNewAnnouncement
	}
	return titleAnnouncementUpdate
}

func announcementBody(a *model.Announcement) string {
	return a.Title + "\n" + a.Description
}

func taskBody(t *model.Task) string {
	return t.Title + "\n" + t.Description
}

func taskDueBody(t *model.Task) string {
	return fmt.Sprintf("%q is due today.", t.Title)
}

// messageTitle picks the room name for group rooms and the sender's display
// name for direct chats.
func messageTitle(room *model.ChatRoom, senderName string) string {
	if room.Type == model.ChatRoomTypeGroup {
		return room.Name
	}
	return senderName
}

// messageBody hides attachment URLs behind a fixed placeholder.
func messageBody(msg *model.ChatMessage) string {
	if msg.FileURL != "" {
		return bodyFileAttachment
	}
	return msg.MessageText
}

// dayWindow returns the inclusive [start-of-day, end-of-day] window around
// now, in now's location. End is the last representable instant of the day
// so that boundary queries stay inclusive.
func dayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
