package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const reviewLockPrefix = "compliance_review_lock:"

// LockRepo serializes concurrent reviews of the same compliance item. The
// lock is advisory: the database transaction remains the source of truth,
// the lock just turns a race into a clean conflict error.
type LockRepo struct {
	client *goredis.Client
}

func NewLockRepo(client *goredis.Client) *LockRepo {
	return &LockRepo{client: client}
}

// AcquireReview takes the per-compliance review lock for ownerID. Returns
// false when another reviewer already holds it.
func (r *LockRepo) AcquireReview(ctx context.Context, complianceID, ownerID string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if complianceID == "" || ownerID == "" || ttl <= 0 {
		return false, fmt.Errorf("invalid review lock payload")
	}

	ok, err := r.client.SetNX(ctx, reviewLockKey(complianceID), ownerID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire review lock: %w", err)
	}
	return ok, nil
}

// ReleaseReview drops the lock only if ownerID still holds it.
func (r *LockRepo) ReleaseReview(ctx context.Context, complianceID, ownerID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
	if err := r.client.Eval(ctx, script, []string{reviewLockKey(complianceID)}, ownerID).Err(); err != nil && err != goredis.Nil {
		return fmt.Errorf("release review lock: %w", err)
	}
	return nil
}

func reviewLockKey(complianceID string) string {
	return reviewLockPrefix + complianceID
}
