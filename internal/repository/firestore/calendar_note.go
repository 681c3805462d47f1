package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/mykocapp/notifier/internal/model"
)

type CalendarNoteRepository struct {
	client *fs.Client
}

func NewCalendarNoteRepository(client *fs.Client) *CalendarNoteRepository {
	return &CalendarNoteRepository{client: client}
}

// ListBetween returns calendar notes dated inside [start, end].
func (r *CalendarNoteRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*model.CalendarNote, error) {
	iter := r.client.Collection(collectionNotes).
		Where("date", ">=", start).
		Where("date", "<=", end).
		Documents(ctx)
	defer iter.Stop()

	var notes []*model.CalendarNote
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar notes: %w", err)
		}

		var note model.CalendarNote
		if err := doc.DataTo(&note); err != nil {
			return nil, fmt.Errorf("failed to decode calendar note %s: %w", doc.Ref.ID, err)
		}
		notes = append(notes, &note)
	}

	return notes, nil
}
