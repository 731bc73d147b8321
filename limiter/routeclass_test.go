package limiter

import (
	"errors"
	"testing"
	"time"

	"github.com/agrosud-co/site-service/types"
)

func TestClasses(t *testing.T) {
	classes := NewClasses(map[string]types.RouteClassConfig{
		"contact":    {Limit: 5, WindowSeconds: 3600},
		"rfq":        {Limit: 10, WindowSeconds: 3600},
		"newsletter": {Limit: 3, WindowSeconds: 3600},
	})

	contact, err := classes.Get("contact")
	if err != nil {
		t.Fatal(err)
	}
	if contact.Limit != 5 || contact.Window != time.Hour {
		t.Fatalf("unexpected contact class: %+v", contact)
	}
	if contact.Prefix != "rl:contact" {
		t.Fatalf("unexpected prefix %q", contact.Prefix)
	}

	_, err = classes.Get("admin")
	if !errors.Is(err, types.ErrRouteClassUnknown) {
		t.Fatalf("expected ErrRouteClassUnknown, got %v", err)
	}
}
