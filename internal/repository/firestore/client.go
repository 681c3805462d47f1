package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/mykocapp/notifier/internal/config"
)

// Collection names, shared with the mobile client.
const (
	collectionStudents  = "students"
	collectionTasks     = "tasks"
	collectionChatRooms = "chatRooms"
	collectionUsers     = "users"
	collectionTokens    = "fcmTokens"
	collectionNotes     = "calendar_notes"
)

// NewClient connects to the Firestore project backing the mobile app.
func NewClient(ctx context.Context, cfg config.FirestoreConfig) (*fs.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := fs.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}
