package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/apperrors"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/models"
	"github.com/FantinJacopo/pw-frontend-triptales-sub000/internal/repository"
)

// Credential pair kept in 'credentials' table, one row per slot
type CredentialRepo struct {
	DB        DBTX
	Namespace string

	// Called on Close. Nil when the connection is owned by someone else
	closeFn func()
}

var _ repository.CredentialRepo = (*CredentialRepo)(nil)

func NewCredentialRepo(db DBTX, namespace string, closeFn func()) *CredentialRepo {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &CredentialRepo{DB: db, Namespace: namespace, closeFn: closeFn}
}

const loadCredentials = `-- name: Load credentials of namespace
SELECT slot, value
FROM credentials
WHERE namespace = $1
`

func (r *CredentialRepo) Load(ctx context.Context) (models.CredentialPair, error) {
	var pair models.CredentialPair

	rows, _ := r.DB.Query(ctx, loadCredentials, r.Namespace)
	type slotRow struct {
		Slot  string
		Value string
	}
	slots, err := pgx.CollectRows(rows, pgx.RowToStructByPos[slotRow])
	if err != nil {
		return pair, dbError(err)
	}

	for _, s := range slots {
		switch s.Slot {
		case repository.SlotAccessToken:
			pair.AccessToken = s.Value
		case repository.SlotRefreshToken:
			pair.RefreshToken = s.Value
		}
	}

	return pair, nil
}

const upsertSlot = `-- name: Upsert credential slot
INSERT INTO credentials (namespace, slot, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, slot) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

const deleteSlot = `-- name: Delete credential slot
DELETE FROM credentials
WHERE namespace = $1 AND slot = $2
`

// Save both slots in one transaction
func (r *CredentialRepo) Save(ctx context.Context, pair models.CredentialPair) error {
	return inTx(ctx, r.DB, func(tx pgx.Tx) error {
		slots := []struct {
			name  string
			value string
		}{
			{repository.SlotAccessToken, pair.AccessToken},
			{repository.SlotRefreshToken, pair.RefreshToken},
		}

		for _, s := range slots {
			var err error
			switch s.value {
			case "":
				_, err = tx.Exec(ctx, deleteSlot, r.Namespace, s.name)
			default:
				_, err = tx.Exec(ctx, upsertSlot, r.Namespace, s.name, s.value)
			}
			if err != nil {
				return dbError(err)
			}
		}

		return nil
	})
}

const clearCredentials = `-- name: Clear credentials of namespace
DELETE FROM credentials
WHERE namespace = $1
`

func (r *CredentialRepo) Clear(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, clearCredentials, r.Namespace)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *CredentialRepo) Close() error {
	if r.closeFn != nil {
		r.closeFn()
	}
	return nil
}

func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("credentials table not found, migrations not applied. Err: %w", apperrors.ErrStoreNotInitialized)
	}

	return fmt.Errorf("db error: %w", err)
}
