package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sitekhata/sitekhata/internal/config"
)

const (
	keyAttendanceMarkActor = "attendance:mark:actor:%s"
	keySweepLock           = "scheduler:overdue-sweep:lock"

	sweepLockTTL = 5 * time.Minute
)

// AttendanceMarkLimiter throttles attendance marking per actor. Without a
// redis address it stays disabled and every request is allowed.
type AttendanceMarkLimiter struct {
	enabled bool

	bucket *TokenBucket
	locker *Locker

	rate  float64
	burst int
}

func NewAttendanceMarkLimiter(cfg config.Config) *AttendanceMarkLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &AttendanceMarkLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &AttendanceMarkLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		locker:  NewLocker(client),
		rate:    cfg.AttendanceMarkRate,
		burst:   cfg.AttendanceMarkBurst,
	}
}

func (l *AttendanceMarkLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AttendanceMarkLimiter) AllowActor(ctx context.Context, actorID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAttendanceMarkActor, strings.TrimSpace(actorID)), l.rate, l.burst)
}

// TrySweepLock guards the overdue sweep so only one replica runs a pass.
func (l *AttendanceMarkLimiter) TrySweepLock(ctx context.Context) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.locker.TryLock(ctx, keySweepLock, sweepLockTTL)
}

func (l *AttendanceMarkLimiter) ReleaseSweepLock(ctx context.Context, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, keySweepLock, token)
}
