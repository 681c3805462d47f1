package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mykocapp/notifier/internal/model"
)

type TaskRepository struct {
	client *fs.Client
}

func NewTaskRepository(client *fs.Client) *TaskRepository {
	return &TaskRepository{client: client}
}

// ListDueBetween returns tasks whose due date falls inside [start, end].
func (r *TaskRepository) ListDueBetween(ctx context.Context, start, end time.Time) ([]*model.Task, error) {
	iter := r.client.Collection(collectionTasks).
		Where("dueDate", ">=", start).
		Where("dueDate", "<=", end).
		Documents(ctx)
	defer iter.Stop()

	var tasks []*model.Task
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list due tasks: %w", err)
		}

		var task model.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, fmt.Errorf("failed to decode task %s: %w", doc.Ref.ID, err)
		}
		task.ID = doc.Ref.ID
		tasks = append(tasks, &task)
	}

	return tasks, nil
}
