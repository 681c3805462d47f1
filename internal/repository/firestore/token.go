package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"github.com/patrickmn/go-cache"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mykocapp/notifier/internal/model"
)

// TokenRepository reads device tokens from the fcmTokens collection. Token
// lookups dominate the read traffic (one per recipient per event), so hits
// are cached per-process with a short TTL.
type TokenRepository struct {
	client *fs.Client
	cache  *cache.Cache
}

func NewTokenRepository(client *fs.Client, ttl time.Duration) *TokenRepository {
	return &TokenRepository{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Get returns the device token registered for uid, or an empty string when
// the user has no token document. Absent tokens are not cached so a fresh
// registration is picked up immediately.
func (r *TokenRepository) Get(ctx context.Context, uid string) (string, error) {
	if token, found := r.cache.Get(uid); found {
		return token.(string), nil
	}

	doc, err := r.client.Collection(collectionTokens).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get device token for %s: %w", uid, err)
	}

	var deviceToken model.DeviceToken
	if err := doc.DataTo(&deviceToken); err != nil {
		return "", fmt.Errorf("failed to decode device token for %s: %w", uid, err)
	}

	if deviceToken.Token != "" {
		r.cache.SetDefault(uid, deviceToken.Token)
	}
	return deviceToken.Token, nil
}
