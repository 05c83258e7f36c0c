package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/crowdvault/internal/event"
	funding "github.com/louisbranch/crowdvault/internal/funding/domain"
	"github.com/louisbranch/crowdvault/internal/storage"
)

// PutCampaign upserts a campaign and rewrites its contribution rows in one
// transaction, so the persisted aggregate always matches the in-memory one.
// Journal events ride in the same transaction.
func (s *Store) PutCampaign(ctx context.Context, c funding.Campaign, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO campaigns (
		   id, asset_id, name, creator, target, min_contribution,
		   pool, status, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   asset_id = excluded.asset_id,
		   name = excluded.name,
		   pool = excluded.pool,
		   status = excluded.status`,
		c.ID,
		c.AssetID,
		c.Name,
		c.Creator,
		int64(c.Target),
		int64(c.MinContribution),
		int64(c.Pool),
		c.Status.String(),
		toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put campaign: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM contributions WHERE campaign_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear contributions: %w", err)
	}
	for position, addr := range c.Contributors {
		record, ok := c.Contributions[addr]
		if !ok {
			return fmt.Errorf("contributor %q has no contribution record", addr)
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO contributions (campaign_id, contributor, amount, position, contributed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			c.ID,
			addr,
			int64(record.Amount),
			position,
			toMillis(record.ContributedAt),
		)
		if err != nil {
			return fmt.Errorf("put contribution: %w", err)
		}
	}

	for _, evt := range events {
		if _, err := appendEventInTx(ctx, tx, evt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit campaign: %w", err)
	}
	return nil
}

// GetCampaign rehydrates a campaign aggregate by ID.
func (s *Store) GetCampaign(ctx context.Context, id string) (funding.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return funding.Campaign{}, err
	}
	if s == nil || s.sqlDB == nil {
		return funding.Campaign{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return funding.Campaign{}, fmt.Errorf("campaign id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, asset_id, name, creator, target, min_contribution,
		        pool, status, created_at
		   FROM campaigns
		  WHERE id = ?`,
		id,
	)
	campaign, err := scanCampaign(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return funding.Campaign{}, storage.ErrNotFound
		}
		return funding.Campaign{}, fmt.Errorf("get campaign: %w", err)
	}

	if err := s.loadContributions(ctx, &campaign); err != nil {
		return funding.Campaign{}, err
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign; contribution rows cascade. Journal
// events survive the deletion as the audit trail.
func (s *Store) DeleteCampaign(ctx context.Context, id string, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("campaign id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	for _, evt := range events {
		if _, err := appendEventInTx(ctx, tx, evt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ListCampaigns returns one page of campaign aggregates ordered by ID.
func (s *Store) ListCampaigns(ctx context.Context, pageSize int, pageToken string) (storage.CampaignPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.CampaignPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CampaignPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.CampaignPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.CampaignPage{
		Campaigns: make([]funding.Campaign, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, asset_id, name, creator, target, min_contribution,
			        pool, status, created_at
			   FROM campaigns
			  ORDER BY id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, asset_id, name, creator, target, min_contribution,
			        pool, status, created_at
			   FROM campaigns
			  WHERE id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.CampaignPage{}, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		campaign, err := scanCampaign(rows.Scan)
		if err != nil {
			return storage.CampaignPage{}, fmt.Errorf("list campaigns: %w", err)
		}
		page.Campaigns = append(page.Campaigns, campaign)
	}
	if err := rows.Err(); err != nil {
		return storage.CampaignPage{}, fmt.Errorf("list campaigns: %w", err)
	}
	if len(page.Campaigns) > pageSize {
		page.NextPageToken = page.Campaigns[pageSize-1].ID
		page.Campaigns = page.Campaigns[:pageSize]
	}

	for i := range page.Campaigns {
		if err := s.loadContributions(ctx, &page.Campaigns[i]); err != nil {
			return storage.CampaignPage{}, err
		}
	}
	return page, nil
}

func scanCampaign(scan func(dest ...any) error) (funding.Campaign, error) {
	var campaign funding.Campaign
	var target, minContribution, pool, createdAt int64
	var status string
	err := scan(
		&campaign.ID,
		&campaign.AssetID,
		&campaign.Name,
		&campaign.Creator,
		&target,
		&minContribution,
		&pool,
		&status,
		&createdAt,
	)
	if err != nil {
		return funding.Campaign{}, err
	}
	campaign.Target = uint64(target)
	campaign.MinContribution = uint64(minContribution)
	campaign.Pool = uint64(pool)
	campaign.Status = funding.StatusFromString(status)
	campaign.CreatedAt = fromMillis(createdAt)
	return campaign, nil
}

func (s *Store) loadContributions(ctx context.Context, campaign *funding.Campaign) error {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT contributor, amount, contributed_at
		   FROM contributions
		  WHERE campaign_id = ?
		  ORDER BY position ASC`,
		campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("load contributions: %w", err)
	}
	defer rows.Close()

	campaign.Contributions = make(map[string]funding.Contribution)
	campaign.Contributors = nil
	for rows.Next() {
		var addr string
		var amount, contributedAt int64
		if err := rows.Scan(&addr, &amount, &contributedAt); err != nil {
			return fmt.Errorf("load contributions: %w", err)
		}
		campaign.Contributions[addr] = funding.Contribution{
			Amount:        uint64(amount),
			ContributedAt: fromMillis(contributedAt),
		}
		campaign.Contributors = append(campaign.Contributors, addr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load contributions: %w", err)
	}
	return nil
}
