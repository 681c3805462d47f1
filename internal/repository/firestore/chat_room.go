package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mykocapp/notifier/internal/model"
)

type ChatRoomRepository struct {
	client *fs.Client
}

func NewChatRoomRepository(client *fs.Client) *ChatRoomRepository {
	return &ChatRoomRepository{client: client}
}

// Get returns the chat room with the given id, or nil when it no longer
// exists (the room may have been deleted between the message write and the
// trigger firing).
func (r *ChatRoomRepository) Get(ctx context.Context, roomID string) (*model.ChatRoom, error) {
	doc, err := r.client.Collection(collectionChatRooms).Doc(roomID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat room %s: %w", roomID, err)
	}

	var room model.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, fmt.Errorf("failed to decode chat room %s: %w", roomID, err)
	}
	room.ID = doc.Ref.ID
	return &room, nil
}
