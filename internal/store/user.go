package store

import (
	"context"
	"fmt"
	"strings"

	"health-directory-api/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO usuarios (nombre, correo, contrasena, telefono)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Phone,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return translateUnique(err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, nombre, correo, contrasena, telefono, created_at, updated_at
		 FROM usuarios WHERE correo = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, nombre, correo, contrasena, telefono, created_at, updated_at
		 FROM usuarios WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, nombre, correo, telefono FROM usuarios ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM usuarios`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UserPatch carries the optional fields of a partial profile update. A nil
// field means "leave as is".
type UserPatch struct {
	Name  *string
	Email *string
	Phone *string
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, p UserPatch) (*model.User, error) {
	sets := []string{}
	args := []any{}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("nombre", *p.Name)
	}
	if p.Email != nil {
		add("correo", *p.Email)
	}
	if p.Phone != nil {
		add("telefono", *p.Phone)
	}
	args = append(args, id)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE usuarios SET %s, updated_at = NOW() WHERE id = $%d`,
			strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return nil, translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.UserByID(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM usuarios WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}
