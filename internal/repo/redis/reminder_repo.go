package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const reminderPrefix = "compliance_reminder:"

// ReminderRepo deduplicates deadline reminder emails. One marker per
// compliance item per calendar day, expiring on its own so the sweep never
// has to clean up.
type ReminderRepo struct {
	client *goredis.Client
}

func NewReminderRepo(client *goredis.Client) *ReminderRepo {
	return &ReminderRepo{client: client}
}

// MarkSent returns true when this is the first reminder for the item today.
func (r *ReminderRepo) MarkSent(ctx context.Context, complianceID string, day time.Time, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if complianceID == "" || ttl <= 0 {
		return false, fmt.Errorf("invalid reminder payload")
	}

	ok, err := r.client.SetNX(ctx, reminderKey(complianceID, day), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return ok, nil
}

func reminderKey(complianceID string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", reminderPrefix, complianceID, day.UTC().Format("2006-01-02"))
}
