package model

import "time"

// Task is an assignment given to one or more students. Creation triggers an
// immediate push to every assignee; the daily reminder job notifies assignees
// again on the due date.
type Task struct {
	ID               string    `firestore:"-" json:"id"`
	Title            string    `firestore:"title" json:"title"`
	Description      string    `firestore:"description" json:"description"`
	DueDate          time.Time `firestore:"dueDate" json:"dueDate"`
	AssignedStudents []string  `firestore:"assignedStudents" json:"assignedStudents"`
}
