package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	statePrefix = "oauth_state:"
	// stateGrace keeps a key readable past its expiry so a late callback is
	// reported as expired instead of unknown
	stateGrace = 10 * time.Minute
)

// OAuthStateStore keeps CSRF states in Redis as JSON values
type OAuthStateStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewOAuthStateStore(client *redis.Client) *OAuthStateStore {
	return &OAuthStateStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.IOAuthStateStore = (*OAuthStateStore)(nil)

func stateKey(provider, state string) string {
	return fmt.Sprintf("%s%s:%s", statePrefix, provider, state)
}

func (s *OAuthStateStore) Create(ctx context.Context, st *model.OAuthState) error {
	if st.CreatedAt.IsZero() {
		st.CreatedAt = s.now()
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "marshal oauth state")
	}
	ttl := st.ExpiresAt.Sub(s.now()) + stateGrace
	ok, err := s.client.SetNX(ctx, stateKey(st.Provider, st.State), raw, ttl).Result()
	if err != nil {
		return errors.Wrap(err, "store oauth state")
	}
	if !ok {
		return errors.New("oauth state collision")
	}
	return nil
}

// Consume reads and deletes the key with a single GETDEL
func (s *OAuthStateStore) Consume(ctx context.Context, state, provider string) (*model.OAuthState, error) {
	raw, err := s.client.GetDel(ctx, stateKey(provider, state)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrStateNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "consume oauth state")
	}
	st := &model.OAuthState{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, errors.Wrap(err, "decode oauth state")
	}
	if st.Expired(s.now()) {
		return st, repository.ErrStateExpired
	}
	return st, nil
}

// PurgeExpired is a no-op: Redis drops keys on their own TTL
func (s *OAuthStateStore) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}
