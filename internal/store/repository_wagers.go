package store

import (
	"context"
	"fmt"
)

func (q *Queries) GetWager(ctx context.Context, communityID, betID, memberID string) (Wager, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT community_id, bet_id, member_id, option_id, amount, created_at, updated_at
		   FROM wagers WHERE community_id = ? AND bet_id = ? AND member_id = ?`,
		communityID, betID, memberID,
	)
	w, err := scanWager(row)
	if err != nil {
		return Wager{}, mapNotFound(err)
	}
	return w, nil
}

// UpsertWager inserts the wager, or sets the amount of the existing
// (bet, member) record. The option of an existing record never changes.
func (q *Queries) UpsertWager(ctx context.Context, w Wager) error {
	now := nowMillis()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO wagers (community_id, bet_id, member_id, option_id, amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (community_id, bet_id, member_id)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		w.CommunityID, w.BetID, w.MemberID, w.OptionID, w.Amount, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert wager: %w", err)
	}
	return nil
}

// ListWagers returns the wagers of a bet in placement order.
func (q *Queries) ListWagers(ctx context.Context, communityID, betID string) ([]Wager, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT community_id, bet_id, member_id, option_id, amount, created_at, updated_at
		   FROM wagers WHERE community_id = ? AND bet_id = ?
		  ORDER BY created_at, rowid`,
		communityID, betID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wagers: %w", err)
	}
	defer rows.Close()
	out := []Wager{}
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SumMemberWagers totals the live wagers of a member across every bet of the
// community. Settled bets keep no wager rows.
func (q *Queries) SumMemberWagers(ctx context.Context, communityID, memberID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM wagers WHERE community_id = ? AND member_id = ?`,
		communityID, memberID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum member wagers: %w", err)
	}
	return total, nil
}

func (q *Queries) DeleteWagers(ctx context.Context, communityID, betID string) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM wagers WHERE community_id = ? AND bet_id = ?`,
		communityID, betID,
	); err != nil {
		return fmt.Errorf("delete wagers: %w", err)
	}
	return nil
}

// ListOptionTotals sums the wagers per option of a bet. Options nobody backed
// are included with a zero total.
func (q *Queries) ListOptionTotals(ctx context.Context, communityID, betID string) ([]OptionTotal, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT o.option_id, COALESCE(SUM(w.amount), 0), COUNT(w.member_id)
		   FROM bet_options o
		   LEFT JOIN wagers w
		     ON w.community_id = o.community_id AND w.bet_id = o.bet_id AND w.option_id = o.option_id
		  WHERE o.community_id = ? AND o.bet_id = ?
		  GROUP BY o.option_id, o.position
		  ORDER BY o.position`,
		communityID, betID,
	)
	if err != nil {
		return nil, fmt.Errorf("list option totals: %w", err)
	}
	defer rows.Close()
	out := []OptionTotal{}
	for rows.Next() {
		var t OptionTotal
		if err := rows.Scan(&t.OptionID, &t.Total, &t.Bettors); err != nil {
			return nil, fmt.Errorf("scan option total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanWager(row rowScanner) (Wager, error) {
	var w Wager
	var createdAt, updatedAt int64
	if err := row.Scan(&w.CommunityID, &w.BetID, &w.MemberID, &w.OptionID, &w.Amount, &createdAt, &updatedAt); err != nil {
		return Wager{}, err
	}
	w.CreatedAt = fromMillis(createdAt)
	w.UpdatedAt = fromMillis(updatedAt)
	return w, nil
}
