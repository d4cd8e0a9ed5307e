package battles

import (
	"database/sql"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/repos/battles"
)

var _ battles.Battles = (*battlesRepo)(nil)

type battlesRepo struct{ db *sql.DB }

func New(db *sql.DB) *battlesRepo {
	return &battlesRepo{db: db}
}

const battleCols = `id, user_a_id, user_b_id, prediction_a_id, prediction_b_id,
	user_a_accepted, user_a_accepted_at, user_b_accepted, user_b_accepted_at,
	status, created_at, activated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBattle(row rowScanner) (models.Battle, error) {
	var b models.Battle

	err := row.Scan(
		&b.ID, &b.UserAID, &b.UserBID, &b.PredictionAID, &b.PredictionBID,
		&b.UserAAccepted, &b.UserAAcceptAt, &b.UserBAccepted, &b.UserBAcceptAt,
		&b.Status, &b.CreatedAt, &b.ActivatedAt,
	)

	return b, err
}
