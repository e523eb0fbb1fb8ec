package store

import (
	"context"
	"fmt"
)

const accountColumns = `community_id, member_id, balance, staked, created_at, updated_at`

func (q *Queries) InsertAccount(ctx context.Context, communityID, memberID string, balance int64) error {
	now := nowMillis()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (community_id, member_id, balance, staked, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		communityID, memberID, balance, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (q *Queries) GetAccount(ctx context.Context, communityID, memberID string) (Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE community_id = ? AND member_id = ?`,
		communityID, memberID,
	)
	acc, err := scanAccount(row)
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return acc, nil
}

func (q *Queries) UpdateAccount(ctx context.Context, communityID, memberID string, balance, staked int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, staked = ?, updated_at = ?
		  WHERE community_id = ? AND member_id = ?`,
		balance, staked, nowMillis(), communityID, memberID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAccounts returns the accounts of one community ordered by member id.
func (q *Queries) ListAccounts(ctx context.Context, communityID string) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE community_id = ? ORDER BY member_id`,
		communityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	out := []Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// ListLeaderboard ranks by total worth (balance + staked), then balance.
func (q *Queries) ListLeaderboard(ctx context.Context, communityID string, limit int) ([]Account, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		  WHERE community_id = ?
		  ORDER BY balance + staked DESC, balance DESC, member_id ASC
		  LIMIT ?`,
		communityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()
	out := make([]Account, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// ListAccountKeys returns every account key across all communities.
func (q *Queries) ListAccountKeys(ctx context.Context) ([]AccountKey, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT community_id, member_id FROM accounts ORDER BY community_id, member_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list account keys: %w", err)
	}
	defer rows.Close()
	out := []AccountKey{}
	for rows.Next() {
		var k AccountKey
		if err := rows.Scan(&k.CommunityID, &k.MemberID); err != nil {
			return nil, fmt.Errorf("scan account key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var acc Account
	var createdAt, updatedAt int64
	if err := row.Scan(&acc.CommunityID, &acc.MemberID, &acc.Balance, &acc.Staked, &createdAt, &updatedAt); err != nil {
		return Account{}, err
	}
	acc.CreatedAt = fromMillis(createdAt)
	acc.UpdatedAt = fromMillis(updatedAt)
	return acc, nil
}
