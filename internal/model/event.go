package model

// Document event payloads posted to the trigger endpoints. These mirror the
// before/after snapshot shape delivered by the document store's trigger
// mechanism: a nil Before means the document was created, a nil After means
// it was deleted.

// AnnouncementEvent is a write (create or update) to an announcement.
type AnnouncementEvent struct {
	ID     string        `json:"id" binding:"required"`
	Before *Announcement `json:"before"`
	After  *Announcement `json:"after"`
}

// TaskEvent is the creation of a task document.
type TaskEvent struct {
	ID   string `json:"id" binding:"required"`
	Task Task   `json:"task" binding:"required"`
}

// MessageEvent is the creation of a message inside a chat room. RoomID comes
// from the trigger path, not the message body.
type MessageEvent struct {
	RoomID    string      `json:"roomId" binding:"required"`
	MessageID string      `json:"messageId" binding:"required"`
	Message   ChatMessage `json:"message" binding:"required"`
}
