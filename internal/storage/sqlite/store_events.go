package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/crowdvault/internal/event"
	"github.com/louisbranch/crowdvault/internal/storage"
)

// eventHash computes the content-addressed identity for an event: SHA-256
// over a canonical field envelope, truncated to 128 bits.
func eventHash(evt event.Event) string {
	h := sha256.New()
	h.Write([]byte(evt.CampaignID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatUint(evt.Seq, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(toMillis(evt.Timestamp), 10)))
	h.Write([]byte{0})
	h.Write([]byte(evt.Type))
	h.Write([]byte{0})
	h.Write([]byte(evt.ActorType))
	h.Write([]byte{0})
	h.Write([]byte(evt.ActorID))
	h.Write([]byte{0})
	h.Write([]byte(evt.EntityType))
	h.Write([]byte{0})
	h.Write([]byte(evt.EntityID))
	h.Write([]byte{0})
	h.Write(evt.PayloadJSON)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// AppendEvent atomically appends an event and returns it with sequence and
// hash set.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.CampaignID) == "" {
		return event.Event{}, fmt.Errorf("campaign id is required")
	}
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("event type is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	evt, err = appendEventInTx(ctx, tx, evt)
	if err != nil {
		return event.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit event: %w", err)
	}
	return evt, nil
}

// appendEventInTx assigns the next sequence and content hash, then inserts
// the event within the caller's transaction.
func appendEventInTx(ctx context.Context, tx *sql.Tx, evt event.Event) (event.Event, error) {
	if strings.TrimSpace(evt.CampaignID) == "" {
		return event.Event{}, fmt.Errorf("campaign id is required")
	}
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("event type is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	var lastSeq int64
	row := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE campaign_id = ?`,
		evt.CampaignID,
	)
	if err := row.Scan(&lastSeq); err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	evt.Seq = uint64(lastSeq) + 1
	evt.Hash = eventHash(evt)

	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO events (
		   campaign_id, seq, event_hash, timestamp, event_type,
		   actor_type, actor_id, entity_type, entity_id, payload
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.CampaignID,
		int64(evt.Seq),
		evt.Hash,
		toMillis(evt.Timestamp),
		string(evt.Type),
		string(evt.ActorType),
		evt.ActorID,
		evt.EntityType,
		evt.EntityID,
		evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	return evt, nil
}

// GetEventBySeq retrieves a specific event by sequence number.
func (s *Store) GetEventBySeq(ctx context.Context, campaignID string, seq uint64) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return event.Event{}, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT campaign_id, seq, event_hash, timestamp, event_type,
		        actor_type, actor_id, entity_type, entity_id, payload
		   FROM events
		  WHERE campaign_id = ? AND seq = ?`,
		campaignID,
		int64(seq),
	)
	evt, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	return evt, nil
}

// ListEvents returns events ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, campaignID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT campaign_id, seq, event_hash, timestamp, event_type,
		        actor_type, actor_id, entity_type, entity_id, payload
		   FROM events
		  WHERE campaign_id = ? AND seq > ?
		  ORDER BY seq ASC
		  LIMIT ?`,
		campaignID,
		int64(afterSeq),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetLatestEventSeq returns the latest event sequence number for a
// campaign, 0 if no events exist.
func (s *Store) GetLatestEventSeq(ctx context.Context, campaignID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return 0, fmt.Errorf("campaign id is required")
	}

	var seq int64
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE campaign_id = ?`,
		campaignID,
	)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("get latest event seq: %w", err)
	}
	return uint64(seq), nil
}

// ListEventsPage returns a paginated, filtered list of events.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	if err := ctx.Err(); err != nil {
		return storage.ListEventsPageResult{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(req.CampaignID) == "" {
		return storage.ListEventsPageResult{}, fmt.Errorf("campaign id is required")
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}
	if req.PageSize > 200 {
		req.PageSize = 200
	}

	plan := buildListEventsPageSQLPlan(req)

	query := fmt.Sprintf(
		`SELECT campaign_id, seq, event_hash, timestamp, event_type,
		        actor_type, actor_id, entity_type, entity_id, payload
		   FROM events WHERE %s %s %s`,
		plan.whereClause,
		plan.orderClause,
		plan.limitClause,
	)

	rows, err := s.sqlDB.QueryContext(ctx, query, plan.params...)
	if err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0, req.PageSize)
	for rows.Next() {
		evt, err := scanEvent(rows.Scan)
		if err != nil {
			return storage.ListEventsPageResult{}, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("iterate events: %w", err)
	}

	hasMore := len(events) > req.PageSize
	if hasMore {
		events = events[:req.PageSize]
	}

	// Previous-page queries fetch in reversed order; restore it here.
	if req.CursorReverse {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events WHERE %s", plan.countWhereClause)
	var totalCount int
	if err := s.sqlDB.QueryRowContext(ctx, countQuery, plan.countParams...).Scan(&totalCount); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("count events: %w", err)
	}

	result := storage.ListEventsPageResult{
		Events:     events,
		TotalCount: totalCount,
	}
	if req.CursorReverse {
		// We navigated backwards from a later page, so a next page exists.
		result.HasNextPage = true
		result.HasPrevPage = hasMore
	} else {
		result.HasNextPage = hasMore
		result.HasPrevPage = req.CursorSeq > 0
	}
	return result, nil
}

func scanEvent(scan func(dest ...any) error) (event.Event, error) {
	var evt event.Event
	var seq, timestamp int64
	var eventType, actorType string
	err := scan(
		&evt.CampaignID,
		&seq,
		&evt.Hash,
		&timestamp,
		&eventType,
		&actorType,
		&evt.ActorID,
		&evt.EntityType,
		&evt.EntityID,
		&evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, err
	}
	evt.Seq = uint64(seq)
	evt.Timestamp = fromMillis(timestamp)
	evt.Type = event.Type(eventType)
	evt.ActorType = event.ActorType(actorType)
	return evt, nil
}
