package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mykocapp/notifier/internal/model"
)

type UserRepository struct {
	client *fs.Client
}

func NewUserRepository(client *fs.Client) *UserRepository {
	return &UserRepository{client: client}
}

// ActiveChatRoom returns the id of the chat room uid currently has open on
// their device, or an empty string. A missing user document counts as "not
// viewing anything".
func (r *UserRepository) ActiveChatRoom(ctx context.Context, uid string) (string, error) {
	doc, err := r.client.Collection(collectionUsers).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user %s: %w", uid, err)
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return "", fmt.Errorf("failed to decode user %s: %w", uid, err)
	}
	return user.ActiveChatRoomID, nil
}
