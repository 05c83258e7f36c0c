package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/crowdvault/internal/event"
	governance "github.com/louisbranch/crowdvault/internal/governance/domain"
	"github.com/louisbranch/crowdvault/internal/storage"
)

// PutProposal upserts a proposal and rewrites its vote rows in one
// transaction. Journal events ride in the same transaction.
func (s *Store) PutProposal(ctx context.Context, p governance.Proposal, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("proposal id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var endedAt int64
	if !p.EndedAt.IsZero() {
		endedAt = toMillis(p.EndedAt)
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO proposals (
		   id, campaign_id, proposer, type, list_price,
		   approvals_weight, rejections_weight, status, created_at, ended_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   approvals_weight = excluded.approvals_weight,
		   rejections_weight = excluded.rejections_weight,
		   status = excluded.status,
		   ended_at = excluded.ended_at`,
		p.ID,
		p.CampaignID,
		p.Proposer,
		p.Type.String(),
		int64(p.ListPrice),
		int64(p.Approvals.Weight),
		int64(p.Rejections.Weight),
		p.Status.String(),
		toMillis(p.CreatedAt),
		endedAt,
	)
	if err != nil {
		return fmt.Errorf("put proposal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE proposal_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear votes: %w", err)
	}
	for voter := range p.Approvals.Voters {
		if err := insertVote(ctx, tx, p.ID, voter, governance.VoteApprove); err != nil {
			return err
		}
	}
	for voter := range p.Rejections.Voters {
		if err := insertVote(ctx, tx, p.ID, voter, governance.VoteReject); err != nil {
			return err
		}
	}

	for _, evt := range events {
		if _, err := appendEventInTx(ctx, tx, evt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit proposal: %w", err)
	}
	return nil
}

func insertVote(ctx context.Context, tx *sql.Tx, proposalID, voter string, choice governance.VoteChoice) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO votes (proposal_id, voter, choice) VALUES (?, ?, ?)`,
		proposalID,
		voter,
		choice.String(),
	)
	if err != nil {
		return fmt.Errorf("put vote: %w", err)
	}
	return nil
}

// GetProposal rehydrates a proposal aggregate by ID.
func (s *Store) GetProposal(ctx context.Context, id string) (governance.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return governance.Proposal{}, err
	}
	if s == nil || s.sqlDB == nil {
		return governance.Proposal{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return governance.Proposal{}, fmt.Errorf("proposal id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, campaign_id, proposer, type, list_price,
		        approvals_weight, rejections_weight, status, created_at, ended_at
		   FROM proposals
		  WHERE id = ?`,
		id,
	)
	proposal, err := scanProposal(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return governance.Proposal{}, storage.ErrNotFound
		}
		return governance.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	if err := s.loadVotes(ctx, &proposal); err != nil {
		return governance.Proposal{}, err
	}
	return proposal, nil
}

// DeleteProposal removes a proposal; vote rows cascade. Journal events
// survive the deletion as the audit trail.
func (s *Store) DeleteProposal(ctx context.Context, id string, events ...event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("proposal id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM proposals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
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

// GetActiveProposals returns the active proposals for a campaign, oldest
// first.
func (s *Store) GetActiveProposals(ctx context.Context, campaignID string) ([]governance.Proposal, error) {
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

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, campaign_id, proposer, type, list_price,
		        approvals_weight, rejections_weight, status, created_at, ended_at
		   FROM proposals
		  WHERE campaign_id = ? AND status = ?
		  ORDER BY created_at ASC, id ASC`,
		campaignID,
		governance.StatusActive.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("get active proposals: %w", err)
	}
	defer rows.Close()

	var proposals []governance.Proposal
	for rows.Next() {
		proposal, err := scanProposal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("get active proposals: %w", err)
		}
		proposals = append(proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get active proposals: %w", err)
	}
	for i := range proposals {
		if err := s.loadVotes(ctx, &proposals[i]); err != nil {
			return nil, err
		}
	}
	return proposals, nil
}

// ListProposals returns one page of a campaign's proposals ordered by ID.
func (s *Store) ListProposals(ctx context.Context, campaignID string, pageSize int, pageToken string) (storage.ProposalPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.ProposalPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ProposalPage{}, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return storage.ProposalPage{}, fmt.Errorf("campaign id is required")
	}
	if pageSize <= 0 {
		return storage.ProposalPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.ProposalPage{
		Proposals: make([]governance.Proposal, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, campaign_id, proposer, type, list_price,
			        approvals_weight, rejections_weight, status, created_at, ended_at
			   FROM proposals
			  WHERE campaign_id = ?
			  ORDER BY id ASC
			  LIMIT ?`,
			campaignID,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, campaign_id, proposer, type, list_price,
			        approvals_weight, rejections_weight, status, created_at, ended_at
			   FROM proposals
			  WHERE campaign_id = ? AND id > ?
			  ORDER BY id ASC
			  LIMIT ?`,
			campaignID,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.ProposalPage{}, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		proposal, err := scanProposal(rows.Scan)
		if err != nil {
			return storage.ProposalPage{}, fmt.Errorf("list proposals: %w", err)
		}
		page.Proposals = append(page.Proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return storage.ProposalPage{}, fmt.Errorf("list proposals: %w", err)
	}
	if len(page.Proposals) > pageSize {
		page.NextPageToken = page.Proposals[pageSize-1].ID
		page.Proposals = page.Proposals[:pageSize]
	}

	for i := range page.Proposals {
		if err := s.loadVotes(ctx, &page.Proposals[i]); err != nil {
			return storage.ProposalPage{}, err
		}
	}
	return page, nil
}

func scanProposal(scan func(dest ...any) error) (governance.Proposal, error) {
	var proposal governance.Proposal
	var proposalType, status string
	var listPrice, approvals, rejections, createdAt, endedAt int64
	err := scan(
		&proposal.ID,
		&proposal.CampaignID,
		&proposal.Proposer,
		&proposalType,
		&listPrice,
		&approvals,
		&rejections,
		&status,
		&createdAt,
		&endedAt,
	)
	if err != nil {
		return governance.Proposal{}, err
	}
	proposal.Type = governance.TypeFromString(proposalType)
	proposal.ListPrice = uint64(listPrice)
	proposal.Approvals.Weight = uint64(approvals)
	proposal.Rejections.Weight = uint64(rejections)
	proposal.Status = governance.StatusFromString(status)
	proposal.CreatedAt = fromMillis(createdAt)
	if endedAt != 0 {
		proposal.EndedAt = fromMillis(endedAt)
	}
	return proposal, nil
}

func (s *Store) loadVotes(ctx context.Context, proposal *governance.Proposal) error {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT voter, choice FROM votes WHERE proposal_id = ?`,
		proposal.ID,
	)
	if err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	defer rows.Close()

	proposal.Approvals.Voters = make(map[string]struct{})
	proposal.Rejections.Voters = make(map[string]struct{})
	for rows.Next() {
		var voter, choice string
		if err := rows.Scan(&voter, &choice); err != nil {
			return fmt.Errorf("load votes: %w", err)
		}
		switch governance.VoteChoiceFromString(choice) {
		case governance.VoteApprove:
			proposal.Approvals.Voters[voter] = struct{}{}
		case governance.VoteReject:
			proposal.Rejections.Voters[voter] = struct{}{}
		default:
			return fmt.Errorf("load votes: unknown choice %q", choice)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	return nil
}
