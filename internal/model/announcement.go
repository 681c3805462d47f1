package model

// Announcement is a class-wide post. A write to an announcement document
// fans out a push to every student enrolled in the class.
type Announcement struct {
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	ClassID     string `firestore:"classId" json:"classId"`
}
