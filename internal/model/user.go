package model

// Student links a user to a class. Announcements resolve recipients by class.
type Student struct {
	UID     string `firestore:"uid" json:"uid"`
	Name    string `firestore:"name" json:"name"`
	ClassID string `firestore:"classId" json:"classId"`
}

// User carries the per-user state this service reads. ActiveChatRoomID is
// mutated by the mobile client when entering or leaving a chat screen and is
// used to suppress notifications for a room the user is already viewing.
type User struct {
	ActiveChatRoomID string `firestore:"activeChatRoomId" json:"activeChatRoomId"`
}

// DeviceToken maps a user to the FCM registration token of their app
// install. One token per user; absence means the user is unreachable.
type DeviceToken struct {
	Token string `firestore:"token" json:"token"`
}
