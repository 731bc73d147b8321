package limiter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrosud-co/site-service/types"
)

const testRedisURL = "redis://localhost:6379/0"

func TestRedisLimiter_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	probe := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := probe.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping integration test: redis not available (%v)", err)
	}
	probe.Close()

	limiter, err := NewRedisLimiter(ctx, testRedisURL)
	if err != nil {
		t.Fatalf("failed to create redis limiter: %v", err)
	}
	defer limiter.Close()

	t.Run("BasicFlow", func(t *testing.T) {
		class := types.RouteClass{
			Name:   "newsletter",
			Prefix: fmt.Sprintf("it_test_%d", time.Now().UnixNano()),
			Limit:  3,
			Window: time.Hour,
		}

		for i := 0; i < class.Limit; i++ {
			result, err := limiter.Check(ctx, "203.0.113.5", class)
			if err != nil {
				t.Fatalf("redis error: %v", err)
			}
			if !result.Allowed {
				t.Fatalf("call %d should be allowed", i+1)
			}
			if result.Remaining != class.Limit-(i+1) {
				t.Errorf("call %d: remaining = %d, want %d", i+1, result.Remaining, class.Limit-(i+1))
			}
		}

		result, err := limiter.Check(ctx, "203.0.113.5", class)
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed {
			t.Error("call past the limit should be denied")
		}
		if result.RetryAfterSeconds <= 0 {
			t.Error("expected positive retry-after on denial")
		}
	})

	t.Run("SharedAcrossInstances", func(t *testing.T) {
		class := types.RouteClass{
			Name:   "contact",
			Prefix: fmt.Sprintf("dist_test_%d", time.Now().UnixNano()),
			Limit:  1,
			Window: time.Hour,
		}

		instanceA, err := NewRedisLimiter(ctx, testRedisURL)
		if err != nil {
			t.Fatal(err)
		}
		defer instanceA.Close()

		if _, err := instanceA.Check(ctx, "198.51.100.7", class); err != nil {
			t.Fatal(err)
		}

		instanceB, err := NewRedisLimiter(ctx, testRedisURL)
		if err != nil {
			t.Fatal(err)
		}
		defer instanceB.Close()

		result, err := instanceB.Check(ctx, "198.51.100.7", class)
		if err != nil {
			t.Fatal(err)
		}
		if result.Allowed {
			t.Error("instance B should observe the request recorded by instance A")
		}
	})
}
