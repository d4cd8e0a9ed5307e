package battles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/battlearena/internal/infra/pgutils"
	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
)

func (r *battlesRepo) Get(ctx context.Context, q pgutils.DBTX, id uuid.UUID) (models.Battle, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+battleCols+`
		FROM battles
		WHERE id = $1
	`, id)

	b, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Battle{}, battles.ErrBattleNotFound
		}

		return models.Battle{}, fmt.Errorf("get battle: %w", err)
	}

	return b, nil
}

// LockForUpdate reads the battle and holds its row lock until tx ends, so
// accept/decline on the same battle are serialized.
func (r *battlesRepo) LockForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (models.Battle, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+battleCols+`
		FROM battles
		WHERE id = $1
		FOR UPDATE
	`, id)

	b, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Battle{}, battles.ErrBattleNotFound
		}

		return models.Battle{}, fmt.Errorf("lock battle: %w", err)
	}

	return b, nil
}
