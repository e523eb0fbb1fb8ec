package store

import (
	"context"
	"fmt"
	"time"
)

type LedgerFilter struct {
	CommunityID string
	MemberID    string
	RefType     string
	RefID       string
}

// InsertLedgerEntry appends one journal row. ID and CreatedAt are filled in
// when empty.
func (q *Queries) InsertLedgerEntry(ctx context.Context, e LedgerEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.UnixMilli(nowMillis())
	}
	if e.ID == "" {
		e.ID = NewIDAt(e.CreatedAt)
	}
	createdAt := e.CreatedAt.UTC().UnixMilli()
	if _, err := q.db.ExecContext(ctx,
		`INSERT INTO ledger_entries
		   (id, community_id, member_id, entry_type, amount, balance_after, ref_type, ref_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CommunityID, e.MemberID, e.Type, e.Amount, e.BalanceAfter, e.RefType, e.RefID, createdAt,
	); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListLedgerEntries returns journal rows matching every non-empty filter
// field, newest first.
func (q *Queries) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, community_id, member_id, entry_type, amount, balance_after, ref_type, ref_id, created_at
		   FROM ledger_entries
		  WHERE (? = '' OR community_id = ?)
		    AND (? = '' OR member_id = ?)
		    AND (? = '' OR ref_type = ?)
		    AND (? = '' OR ref_id = ?)
		  ORDER BY id DESC
		  LIMIT ? OFFSET ?`,
		f.CommunityID, f.CommunityID,
		f.MemberID, f.MemberID,
		f.RefType, f.RefType,
		f.RefID, f.RefID,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	out := make([]LedgerEntry, 0, limit)
	for rows.Next() {
		var e LedgerEntry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.CommunityID, &e.MemberID, &e.Type, &e.Amount, &e.BalanceAfter, &e.RefType, &e.RefID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.CreatedAt = fromMillis(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
