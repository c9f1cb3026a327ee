package room

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema 建表；部署时由 main 调一次
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS rooms (
            id                UUID PRIMARY KEY,
            game_name         TEXT NOT NULL,
            player_count      INT NOT NULL CHECK (player_count BETWEEN 2 AND 10),
            rule              TEXT NOT NULL,
            amount_per_person DOUBLE PRECISION NOT NULL CHECK (amount_per_person >= 0),
            owner_address     TEXT NOT NULL,
            status            TEXT NOT NULL DEFAULT 'active',
            contact_info      TEXT NOT NULL DEFAULT '',
            created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
        )`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_rooms_status_created ON rooms (status, created_at DESC)`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, r *Room) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rooms
            (id, game_name, player_count, rule, amount_per_person, owner_address, status, contact_info, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.GameName, r.PlayerCount, r.Rule, r.AmountPerPerson,
		r.OwnerAddress, r.Status, r.ContactInfo, r.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Room, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game_name, player_count, rule, amount_per_person, owner_address, status, contact_info, created_at
        FROM rooms
        WHERE status = $1
        ORDER BY created_at DESC`,
		StatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Room{}
	for rows.Next() {
		var r Room
		if err := rows.Scan(
			&r.ID, &r.GameName, &r.PlayerCount, &r.Rule, &r.AmountPerPerson,
			&r.OwnerAddress, &r.Status, &r.ContactInfo, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Room, error) {
	var r Room
	err := s.db.QueryRowContext(ctx, `
        SELECT id, game_name, player_count, rule, amount_per_person, owner_address, status, contact_info, created_at
        FROM rooms
        WHERE id = $1`,
		id,
	).Scan(
		&r.ID, &r.GameName, &r.PlayerCount, &r.Rule, &r.AmountPerPerson,
		&r.OwnerAddress, &r.Status, &r.ContactInfo, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) UpdateStatusCompleted(ctx context.Context, id string) error {
	// 带状态条件的更新，两个客户端同时结算只有一个能赢
	res, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET status = $1 WHERE id = $2 AND status = $3`,
		StatusCompleted, id, StatusActive,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// 没更新到行：区分"不存在"与"已结算"
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadySettled
}
