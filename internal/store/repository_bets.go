package store

import (
	"context"
	"fmt"
	"strings"
)

// InsertBet creates an open bet owned by authorID together with its options,
// in caller order. ErrAlreadyExists covers both a taken bet id and an option
// id already used by another bet of the community.
func (q *Queries) InsertBet(ctx context.Context, communityID, betID, authorID string, optionIDs []string) error {
	now := nowMillis()
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO bets (community_id, bet_id, author_id, status, winning_option_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', ?, ?)`,
		communityID, betID, authorID, BetOpen, now, now,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert bet: %w", err)
	}
	for i, optionID := range optionIDs {
		if _, err := q.db.ExecContext(ctx,
			`INSERT INTO bet_options (community_id, option_id, bet_id, position) VALUES (?, ?, ?, ?)`,
			communityID, optionID, betID, i,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("insert bet option: %w", err)
		}
	}
	return nil
}

func (q *Queries) GetBet(ctx context.Context, communityID, betID string) (Bet, error) {
	var b Bet
	var createdAt, updatedAt int64
	err := q.db.QueryRowContext(ctx,
		`SELECT community_id, bet_id, author_id, status, winning_option_id, created_at, updated_at
		   FROM bets WHERE community_id = ? AND bet_id = ?`,
		communityID, betID,
	).Scan(&b.CommunityID, &b.BetID, &b.AuthorID, &b.Status, &b.WinningOptionID, &createdAt, &updatedAt)
	if err != nil {
		return Bet{}, mapNotFound(err)
	}
	b.CreatedAt = fromMillis(createdAt)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

func (q *Queries) UpdateBetStatus(ctx context.Context, communityID, betID, status, winningOptionID string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE bets SET status = ?, winning_option_id = ?, updated_at = ?
		  WHERE community_id = ? AND bet_id = ?`,
		status, winningOptionID, nowMillis(), communityID, betID,
	)
	if err != nil {
		return fmt.Errorf("update bet status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bet status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBetOptions returns the option ids of a bet in registration order.
func (q *Queries) ListBetOptions(ctx context.Context, communityID, betID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT option_id FROM bet_options WHERE community_id = ? AND bet_id = ? ORDER BY position`,
		communityID, betID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bet options: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bet option: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *Queries) GetBetOfOption(ctx context.Context, communityID, optionID string) (string, error) {
	var betID string
	err := q.db.QueryRowContext(ctx,
		`SELECT bet_id FROM bet_options WHERE community_id = ? AND option_id = ?`,
		communityID, optionID,
	).Scan(&betID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return betID, nil
}

// ListBetsByStatus returns the bet ids of a community whose status is one of
// statuses, oldest first.
func (q *Queries) ListBetsByStatus(ctx context.Context, communityID string, statuses ...string) ([]string, error) {
	if len(statuses) == 0 {
		return []string{}, nil
	}
	args := make([]any, 0, len(statuses)+1)
	args = append(args, communityID)
	for _, s := range statuses {
		args = append(args, s)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	rows, err := q.db.QueryContext(ctx,
		`SELECT bet_id FROM bets WHERE community_id = ? AND status IN (`+placeholders+`)
		  ORDER BY created_at, bet_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list bets by status: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan bet id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
