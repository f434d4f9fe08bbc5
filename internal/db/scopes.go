package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukanapp/dukan/internal/intake"
)

// ScopeStore reads department restrictions for chat senders. Most senders
// have no rows and see the whole catalog; a restricted sender only
// resolves products from the departments listed for it.
type ScopeStore struct {
	pool *pgxpool.Pool
}

func NewScopeStore(pool *pgxpool.Pool) *ScopeStore {
	return &ScopeStore{pool: pool}
}

func (s *ScopeStore) ScopeBySender(ctx context.Context, senderChannelID int64) (intake.AccessScope, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT department_id
		FROM sender_departments
		WHERE sender_channel_id = $1`, senderChannelID)
	if err != nil {
		return intake.AccessScope{}, fmt.Errorf("failed to read sender scope: %w", err)
	}
	defer rows.Close()

	var departments []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return intake.AccessScope{}, err
		}
		departments = append(departments, id)
	}
	if err := rows.Err(); err != nil {
		return intake.AccessScope{}, err
	}

	if len(departments) == 0 {
		return intake.FullAccess(), nil
	}
	return intake.ScopeFor(departments...), nil
}
