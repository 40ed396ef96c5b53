package store

import (
	"context"

	"health-directory-api/internal/model"
)

func (s *Store) ListInsurers(ctx context.Context) ([]model.Insurer, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, nombre FROM seguros ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Insurer
	for rows.Next() {
		var ins model.Insurer
		if err := rows.Scan(&ins.ID, &ins.Name); err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}
