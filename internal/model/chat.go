package model

// Chat room types. Group rooms use the room name as the notification title,
// direct rooms use the sender's display name.
const (
	ChatRoomTypeDirect = "direct"
	ChatRoomTypeGroup  = "class_group"
)

// ChatRoom scopes message fan-out to its participants.
type ChatRoom struct {
	ID             string   `firestore:"-" json:"id"`
	Name           string   `firestore:"name" json:"name"`
	Type           string   `firestore:"type" json:"type"`
	ParticipantIDs []string `firestore:"participantIds" json:"participantIds"`
}

// ChatMessage is a single message inside a chat room.
type ChatMessage struct {
	SenderID    string `firestore:"senderId" json:"senderId"`
	SenderName  string `firestore:"senderName" json:"senderName"`
	MessageText string `firestore:"messageText" json:"messageText"`
	FileURL     string `firestore:"fileUrl" json:"fileUrl"`
}
