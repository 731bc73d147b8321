package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/agrosud-co/site-service/types"
)

func contactClass() types.RouteClass {
	return types.RouteClass{
		Name:   "contact",
		Prefix: "rl:contact",
		Limit:  5,
		Window: time.Hour,
	}
}

func TestMemoryLimiter_MonotonicDepletion(t *testing.T) {
	m := NewMemoryLimiter()
	ctx := context.Background()
	class := contactClass()

	for i := 0; i < class.Limit; i++ {
		result, err := m.Check(ctx, "203.0.113.5", class)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
		wantRemaining := class.Limit - (i + 1)
		if result.Remaining != wantRemaining {
			t.Fatalf("call %d: remaining = %d, want %d", i+1, result.Remaining, wantRemaining)
		}
		if result.RetryAfterSeconds != 0 {
			t.Fatalf("allowed call must have zero retry-after, got %d", result.RetryAfterSeconds)
		}
	}

	result, err := m.Check(ctx, "203.0.113.5", class)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("6th call within the window must be denied")
	}
	if result.Remaining != 0 {
		t.Fatalf("denied call remaining = %d, want 0", result.Remaining)
	}
	if result.RetryAfterSeconds <= 0 {
		t.Fatalf("denied call must report a positive retry-after, got %d", result.RetryAfterSeconds)
	}
	if result.Limit != class.Limit {
		t.Fatalf("result limit = %d, want %d", result.Limit, class.Limit)
	}
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	m := NewMemoryLimiter()
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.Now

	ctx := context.Background()
	class := contactClass()

	for i := 0; i < class.Limit; i++ {
		if _, err := m.Check(ctx, "203.0.113.5", class); err != nil {
			t.Fatal(err)
		}
		clock.Advance(time.Minute)
	}

	result, err := m.Check(ctx, "203.0.113.5", class)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denial while window is full")
	}

	clock.Advance(time.Hour)

	result, err = m.Check(ctx, "203.0.113.5", class)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatal("expected allowance after the oldest entries left the window")
	}
}

func TestMemoryLimiter_IdentitiesAreIndependent(t *testing.T) {
	m := NewMemoryLimiter()
	ctx := context.Background()
	class := types.RouteClass{Name: "newsletter", Prefix: "rl:newsletter", Limit: 3, Window: time.Hour}

	for i := 0; i < class.Limit+1; i++ {
		if _, err := m.Check(ctx, "203.0.113.5", class); err != nil {
			t.Fatal(err)
		}
	}

	result, err := m.Check(ctx, "198.51.100.7", class)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatal("a different identity must not inherit another identity's window")
	}
}

func TestMemoryLimiter_ClassesAreIndependent(t *testing.T) {
	m := NewMemoryLimiter()
	ctx := context.Background()

	contact := contactClass()
	rfq := types.RouteClass{Name: "rfq", Prefix: "rl:rfq", Limit: 10, Window: time.Hour}

	for i := 0; i < contact.Limit+1; i++ {
		if _, err := m.Check(ctx, "203.0.113.5", contact); err != nil {
			t.Fatal(err)
		}
	}

	result, err := m.Check(ctx, "203.0.113.5", rfq)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatal("rfq class must keep its own window for the same identity")
	}
}

func TestMemoryLimiter_RetryAfterShrinksOverTime(t *testing.T) {
	m := NewMemoryLimiter()
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m.now = clock.Now

	ctx := context.Background()
	class := contactClass()

	for i := 0; i < class.Limit; i++ {
		if _, err := m.Check(ctx, "203.0.113.5", class); err != nil {
			t.Fatal(err)
		}
	}

	first, err := m.Check(ctx, "203.0.113.5", class)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(30 * time.Minute)

	second, err := m.Check(ctx, "203.0.113.5", class)
	if err != nil {
		t.Fatal(err)
	}

	if !(second.RetryAfterSeconds < first.RetryAfterSeconds) {
		t.Fatalf("retry-after should shrink as time passes: first=%d second=%d",
			first.RetryAfterSeconds, second.RetryAfterSeconds)
	}
}

type fakeClock struct {
	current time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.current
}

func (f *fakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}
