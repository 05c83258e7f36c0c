package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/crowdvault/internal/event"
	"github.com/louisbranch/crowdvault/internal/storage"
	"github.com/louisbranch/crowdvault/internal/storage/filter"
)

func appendTestEvent(t *testing.T, store *Store, campaignID string, eventType event.Type, actorID string) event.Event {
	t.Helper()
	evt, err := store.AppendEvent(context.Background(), event.Event{
		CampaignID:  campaignID,
		Timestamp:   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Type:        eventType,
		ActorType:   event.ActorTypeContributor,
		ActorID:     actorID,
		EntityType:  "campaign",
		EntityID:    campaignID,
		PayloadJSON: []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("append event: %v", err)
	}
	return evt
}

func TestAppendEventAssignsSeqAndHash(t *testing.T) {
	store := openTestStore(t)

	first := appendTestEvent(t, store, "camp-1", event.TypeCampaignCreated, "alice")
	second := appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, "bob")
	other := appendTestEvent(t, store, "camp-2", event.TypeCampaignCreated, "carol")

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("expected sequences 1 and 2, got %d and %d", first.Seq, second.Seq)
	}
	if other.Seq != 1 {
		t.Fatalf("expected independent sequence per campaign, got %d", other.Seq)
	}
	if first.Hash == "" || first.Hash == second.Hash {
		t.Fatalf("expected distinct non-empty hashes, got %q and %q", first.Hash, second.Hash)
	}
	if len(first.Hash) != 32 {
		t.Fatalf("expected 128-bit hex hash, got %q", first.Hash)
	}
}

func TestPutCampaignAppendsEventsInSameTransaction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	campaign := testCampaign("camp-1")
	err := store.PutCampaign(ctx, campaign, event.Event{
		CampaignID: "camp-1",
		Type:       event.TypeCampaignCreated,
		ActorType:  event.ActorTypeContributor,
		ActorID:    "alice",
		EntityType: "campaign",
		EntityID:   "camp-1",
	})
	if err != nil {
		t.Fatalf("put campaign: %v", err)
	}

	seq, err := store.GetLatestEventSeq(ctx, "camp-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if seq != 1 {
		t.Fatalf("expected journal entry alongside the aggregate write, got seq %d", seq)
	}

	// An invalid event rolls the whole write back.
	broken := campaign
	broken.Name = "renamed"
	err = store.PutCampaign(ctx, broken, event.Event{CampaignID: "camp-1"})
	if err == nil {
		t.Fatal("expected invalid event to fail the write")
	}
	got, err := store.GetCampaign(ctx, "camp-1")
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if got.Name != "warehouse" {
		t.Fatalf("expected aggregate write to roll back, got name %q", got.Name)
	}
}

func TestAppendEventRequiresType(t *testing.T) {
	store := openTestStore(t)

	_, err := store.AppendEvent(context.Background(), event.Event{CampaignID: "camp-1"})
	if err == nil {
		t.Fatal("expected missing event type to fail")
	}
}

func TestGetEventBySeq(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := appendTestEvent(t, store, "camp-1", event.TypeCampaignCreated, "alice")

	got, err := store.GetEventBySeq(ctx, "camp-1", 1)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Hash != want.Hash || got.Type != want.Type || got.ActorID != "alice" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Fatalf("expected timestamp %v, got %v", want.Timestamp, got.Timestamp)
	}

	if _, err := store.GetEventBySeq(ctx, "camp-1", 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEventsAfterSeq(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, fmt.Sprintf("addr-%d", i))
	}

	events, err := store.ListEvents(ctx, "camp-1", 2, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events after seq 2, got %d", len(events))
	}
	for i, evt := range events {
		if evt.Seq != uint64(i+3) {
			t.Fatalf("expected ascending seq from 3, got %d at index %d", evt.Seq, i)
		}
	}

	seq, err := store.GetLatestEventSeq(ctx, "camp-1")
	if err != nil {
		t.Fatalf("latest seq: %v", err)
	}
	if seq != 5 {
		t.Fatalf("expected latest seq 5, got %d", seq)
	}

	seq, err = store.GetLatestEventSeq(ctx, "empty")
	if err != nil {
		t.Fatalf("latest seq for empty campaign: %v", err)
	}
	if seq != 0 {
		t.Fatalf("expected latest seq 0, got %d", seq)
	}
}

func TestListEventsPageForward(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, fmt.Sprintf("addr-%d", i))
	}

	first, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		CampaignID: "camp-1",
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("list events page: %v", err)
	}
	if len(first.Events) != 2 || !first.HasNextPage || first.HasPrevPage {
		t.Fatalf("unexpected first page: %d events, next=%v prev=%v", len(first.Events), first.HasNextPage, first.HasPrevPage)
	}
	if first.TotalCount != 5 {
		t.Fatalf("expected total 5, got %d", first.TotalCount)
	}

	second, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		CampaignID: "camp-1",
		PageSize:   2,
		CursorSeq:  first.Events[1].Seq,
		CursorDir:  "fwd",
	})
	if err != nil {
		t.Fatalf("list events page 2: %v", err)
	}
	if len(second.Events) != 2 || second.Events[0].Seq != 3 || !second.HasPrevPage {
		t.Fatalf("unexpected second page: %+v", second)
	}
}

func TestListEventsPageWithFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	appendTestEvent(t, store, "camp-1", event.TypeCampaignCreated, "alice")
	appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, "bob")
	appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, "alice")

	cond, err := filter.ParseEventFilter(`actor_id = "alice"`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}

	page, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		CampaignID:   "camp-1",
		PageSize:     10,
		FilterClause: cond.Clause,
		FilterParams: cond.Params,
	})
	if err != nil {
		t.Fatalf("list events page: %v", err)
	}
	if len(page.Events) != 2 || page.TotalCount != 2 {
		t.Fatalf("expected 2 filtered events, got %d (total %d)", len(page.Events), page.TotalCount)
	}
	for _, evt := range page.Events {
		if evt.ActorID != "alice" {
			t.Fatalf("filter leaked event: %+v", evt)
		}
	}
}

func TestListEventsPageDescending(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		appendTestEvent(t, store, "camp-1", event.TypeCampaignContributed, fmt.Sprintf("addr-%d", i))
	}

	page, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		CampaignID: "camp-1",
		PageSize:   10,
		Descending: true,
	})
	if err != nil {
		t.Fatalf("list events page: %v", err)
	}
	if len(page.Events) != 3 || page.Events[0].Seq != 3 || page.Events[2].Seq != 1 {
		t.Fatalf("expected newest first, got %+v", page.Events)
	}
}
