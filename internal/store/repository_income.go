package store

import (
	"context"
	"fmt"
)

// ClaimIncomeGrant records that runID credited the account. It reports false
// when the account was already credited by this run.
func (q *Queries) ClaimIncomeGrant(ctx context.Context, runID, communityID, memberID string, amount int64) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO income_grants (run_id, community_id, member_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, communityID, memberID, amount, nowMillis(),
	)
	if err != nil {
		return false, fmt.Errorf("claim income grant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim income grant: %w", err)
	}
	return n == 1, nil
}

func (q *Queries) CountIncomeGrants(ctx context.Context, runID string) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM income_grants WHERE run_id = ?`, runID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count income grants: %w", err)
	}
	return n, nil
}
