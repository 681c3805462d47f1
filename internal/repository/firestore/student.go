package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mykocapp/notifier/internal/model"
)

type StudentRepository struct {
	client *fs.Client
}

func NewStudentRepository(client *fs.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

// ListByClass returns every student enrolled in the given class.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]*model.Student, error) {
	iter := r.client.Collection(collectionStudents).
		Where("classId", "==", classID).
		Documents(ctx)
	defer iter.Stop()

	var students []*model.Student
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list students for class %s: %w", classID, err)
		}

		var student model.Student
		if err := doc.DataTo(&student); err != nil {
			return nil, fmt.Errorf("failed to decode student %s: %w", doc.Ref.ID, err)
		}
		students = append(students, &student)
	}

	return students, nil
}
