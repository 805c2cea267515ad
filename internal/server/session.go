package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"

	"sms-ride-workers/internal/models"
)

const (
	SessionCookie     = "sid"
	DefaultSessionTTL = 24 * time.Hour
)

// SessionStore keeps browser sessions in Redis hashes keyed session:<sid>.
// The sid cookie carries the session ID encoded by securecookie.
type SessionStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	codec *securecookie.SecureCookie
}

// NewSessionStore signs cookies with secret. An empty secret gets a random
// key, so cookies do not survive a restart.
func NewSessionStore(rdb *redis.Client, ttl time.Duration, secret string) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	hashKey := []byte(secret)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &SessionStore{rdb: rdb, ttl: ttl, codec: codec}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Load returns the session named by the request cookie, or nil when there is
// no valid cookie or the session has expired.
func (s *SessionStore) Load(ctx context.Context, r *http.Request) (*models.PhoneSession, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, nil
	}
	var id string
	if err := s.codec.Decode(SessionCookie, cookie.Value, &id); err != nil || id == "" {
		return nil, nil
	}

	fields, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	session := &models.PhoneSession{ID: id, Phone: fields["phone"]}
	if created, err := time.Parse(time.RFC3339, fields["created_at"]); err == nil {
		session.CreatedAt = created
		session.ExpiresAt = created.Add(s.ttl)
	}
	return session, nil
}

// SetPhone stores phone in the caller's session, creating the session and
// its cookie when the request carries none. The TTL restarts on every write.
func (s *SessionStore) SetPhone(ctx context.Context, w http.ResponseWriter, r *http.Request, phone string) (*models.PhoneSession, error) {
	session, err := s.Load(ctx, r)
	if err != nil {
		return nil, err
	}
	if session == nil {
		now := time.Now().UTC()
		session = &models.PhoneSession{ID: uuid.New().String(), CreatedAt: now}
	}
	session.Phone = phone
	session.ExpiresAt = time.Now().UTC().Add(s.ttl)

	key := sessionKey(session.ID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "phone", phone, "created_at", session.CreatedAt.Format(time.RFC3339))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	value, err := s.codec.Encode(SessionCookie, session.ID)
	if err != nil {
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}
