package battles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
)

func (r *battlesRepo) ListPendingForUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Battle, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+battleCols+`
		FROM battles
		WHERE status = 'pending_acceptance'
		  AND (
		        (user_a_id = $1 AND NOT user_a_accepted)
		     OR (user_b_id = $1 AND NOT user_b_accepted)
		  )
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending battles: %w", err)
	}

	return collectBattles(rows)
}

func (r *battlesRepo) ListByUser(ctx context.Context, q pgutils.DBTX, userID string) ([]models.Battle, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+battleCols+`
		FROM battles
		WHERE user_a_id = $1
		   OR user_b_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}

	return collectBattles(rows)
}

func collectBattles(rows *sql.Rows) ([]models.Battle, error) {
	defer rows.Close()

	out := make([]models.Battle, 0)

	for rows.Next() {
		b, err := scanBattle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}

		out = append(out, b)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate battles: %w", err)
	}

	return out, nil
}
