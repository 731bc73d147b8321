package storage

import (
	"context"
	"testing"

	"github.com/agrosud-co/site-service/types"
)

func TestMemoryStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Start(); err != nil {
		t.Fatal(err)
	}
	defer store.Stop()

	id, err := store.SaveLead(context.Background(), types.Lead{
		Kind:  types.LeadKindContact,
		Name:  "Mariam Traoré",
		Email: "mariam@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
}

func TestMemoryStore_CountByKind(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, kind := range []string{
		types.LeadKindContact,
		types.LeadKindContact,
		types.LeadKindRFQ,
		types.LeadKindNewsletter,
	} {
		if _, err := store.SaveLead(ctx, types.Lead{Kind: kind, Email: "x@example.com"}); err != nil {
			t.Fatal(err)
		}
	}

	contacts, err := store.CountLeads(ctx, types.LeadKindContact)
	if err != nil {
		t.Fatal(err)
	}
	if contacts != 2 {
		t.Fatalf("contact count = %d, want 2", contacts)
	}

	all, err := store.CountLeads(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if all != 4 {
		t.Fatalf("total count = %d, want 4", all)
	}
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()

	if store.IsRunning() {
		t.Fatal("new store must not be running")
	}
	if err := store.Start(); err != nil {
		t.Fatal(err)
	}
	if err := store.Start(); err == nil {
		t.Fatal("double start must fail")
	}
	if err := store.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := store.Stop(); err == nil {
		t.Fatal("double stop must fail")
	}
}
