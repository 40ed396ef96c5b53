package store

import (
	"context"
	"time"

	"health-directory-api/internal/model"
)

// SlotTaken reports whether the professional already has an appointment at
// exactly t. This is a point-in-time check; the unique constraint on
// (profesional_id, fecha_hora) is what actually guarantees exclusivity when
// two requests race past it.
func (s *Store) SlotTaken(ctx context.Context, professionalID int64, t time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM citas WHERE profesional_id = $1 AND fecha_hora = $2)`,
		professionalID, t,
	).Scan(&exists)
	return exists, err
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO citas (usuario_id, profesional_id, fecha_hora, motivo)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		a.UserID, a.ProfessionalID, a.ScheduledAt, a.Reason,
	).Scan(&a.ID, &a.CreatedAt)
	return translateUnique(err)
}

// AppointmentByID re-reads the row joined with both display names; the
// booking response embeds names, not just foreign keys.
func (s *Store) AppointmentByID(ctx context.Context, id int64) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT c.id, c.usuario_id, c.profesional_id, c.fecha_hora, c.motivo, c.created_at,
		        u.nombre, p.nombre
		 FROM citas c
		 JOIN usuarios u ON u.id = c.usuario_id
		 JOIN profesionales p ON p.id = c.profesional_id
		 WHERE c.id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.ProfessionalID, &a.ScheduledAt, &a.Reason, &a.CreatedAt,
		&a.UserName, &a.ProfessionalName)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// ListAppointments returns one reverse-chronological page plus the total row
// count for the pagination envelope.
func (s *Store) ListAppointments(ctx context.Context, limit, offset int) ([]model.Appointment, int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.usuario_id, c.profesional_id, c.fecha_hora, c.motivo, c.created_at,
		        u.nombre, p.nombre
		 FROM citas c
		 JOIN usuarios u ON u.id = c.usuario_id
		 JOIN profesionales p ON p.id = c.profesional_id
		 ORDER BY c.fecha_hora DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.ProfessionalID, &a.ScheduledAt, &a.Reason,
			&a.CreatedAt, &a.UserName, &a.ProfessionalName); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM citas`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
