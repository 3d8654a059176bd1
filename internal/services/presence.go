package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/envutil"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

const presenceKeyPrefix = "presence:last_seen:"

// Keys outlive the online window so "last seen 3h ago" still renders; the TTL
// only bounds storage for users who never come back.
const presenceKeyTTL = 24 * time.Hour

// PresenceService tracks per-user last-seen timestamps in Redis. Online is
// always derived from the timestamp and the configured window; no boolean is
// ever stored. Without REDIS_ADDR the service runs disabled: Touch is a no-op
// and LastSeen returns nothing.
type PresenceService interface {
	Touch(ctx context.Context, userID uuid.UUID)
	LastSeen(ctx context.Context, userIDs []uuid.UUID) map[uuid.UUID]time.Time
	OnlineWindow() time.Duration
	Enabled() bool
}

type presenceService struct {
	log    *logger.Logger
	rdb    *goredis.Client
	window time.Duration
}

func NewPresenceService(log *logger.Logger) PresenceService {
	serviceLog := log.With("service", "PresenceService")
	windowSeconds := envutil.GetEnvAsInt("PRESENCE_ONLINE_WINDOW_SECONDS", 60, log)
	svc := &presenceService{
		log:    serviceLog,
		window: time.Duration(windowSeconds) * time.Second,
	}

	addr := strings.TrimSpace(envutil.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		serviceLog.Info("REDIS_ADDR not set; presence disabled")
		return svc
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		serviceLog.Warn("redis ping failed; presence disabled", "error", err)
		_ = rdb.Close()
		return svc
	}

	svc.rdb = rdb
	return svc
}

func (s *presenceService) Enabled() bool {
	return s != nil && s.rdb != nil
}

func (s *presenceService) OnlineWindow() time.Duration {
	if s == nil {
		return 0
	}
	return s.window
}

func (s *presenceService) Touch(ctx context.Context, userID uuid.UUID) {
	if !s.Enabled() || userID == uuid.Nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	key := presenceKeyPrefix + userID.String()
	val := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.rdb.Set(ctx, key, val, presenceKeyTTL).Err(); err != nil {
		s.log.Debug("presence touch failed", "user_id", userID.String(), "error", err)
	}
}

func (s *presenceService) LastSeen(ctx context.Context, userIDs []uuid.UUID) map[uuid.UUID]time.Time {
	out := make(map[uuid.UUID]time.Time, len(userIDs))
	if !s.Enabled() || len(userIDs) == 0 {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, presenceKeyPrefix+id.String())
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		s.log.Debug("presence mget failed", "error", err)
		return out
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok || raw == "" {
			continue
		}
		at, perr := time.Parse(time.RFC3339Nano, raw)
		if perr != nil {
			continue
		}
		out[userIDs[i]] = at
	}
	return out
}

// decoratePresence fills LastSeenAt/IsOnline on the given summaries in place.
func decoratePresence(ctx context.Context, presence PresenceService, sums ...*types.UserSummary) {
	if presence == nil || !presence.Enabled() || len(sums) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(sums))
	for _, s := range sums {
		if s != nil && s.ID != uuid.Nil {
			ids = append(ids, s.ID)
		}
	}
	seen := presence.LastSeen(ctx, ids)
	window := presence.OnlineWindow()
	now := time.Now()
	for _, s := range sums {
		if s == nil {
			continue
		}
		if at, ok := seen[s.ID]; ok {
			t := at
			s.LastSeenAt = &t
			s.IsOnline = now.Sub(at) <= window
		}
	}
}
