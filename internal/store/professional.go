package store

import (
	"context"
	"fmt"

	"health-directory-api/internal/model"
)

// Filter holds the directory search criteria. All set fields are combined
// with AND. InsurerID zero and NoInsurance false mean "no insurer filter".
type Filter struct {
	Specialty   string
	Location    string
	Name        string
	InsurerID   int64
	NoInsurance bool
}

// professionalRow is one row of the professional/affiliation LEFT JOIN:
// the professional columns plus at most one (insurer id, insurer name) pair.
// The pair travels together from the SQL scan onward so ids and names can
// never drift out of step.
type professionalRow struct {
	ID          int64
	Name        string
	Specialty   string
	Location    string
	Contact     string
	InsurerID   *int64
	InsurerName *string
}

// SearchProfessionals returns the aggregated directory views matching f,
// ordered by professional id. Insurer criteria are EXISTS subqueries rather
// than join conditions, so a match by seguroId still carries the full
// affiliated-insurer set.
func (s *Store) SearchProfessionals(ctx context.Context, f Filter) ([]model.Professional, error) {
	q := `SELECT p.id, p.nombre, p.especialidad, p.ubicacion, p.contacto, s.id, s.nombre
	      FROM profesionales p
	      LEFT JOIN profesional_seguro ps ON ps.profesional_id = p.id
	      LEFT JOIN seguros s ON s.id = ps.seguro_id`

	conds := []string{}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Specialty != "" {
		add(`p.especialidad ILIKE '%%' || $%d || '%%'`, f.Specialty)
	}
	if f.Location != "" {
		add(`p.ubicacion ILIKE '%%' || $%d || '%%'`, f.Location)
	}
	if f.Name != "" {
		add(`p.nombre ILIKE '%%' || $%d || '%%'`, f.Name)
	}
	if f.InsurerID != 0 {
		add(`EXISTS (SELECT 1 FROM profesional_seguro x
		             WHERE x.profesional_id = p.id AND x.seguro_id = $%d)`, f.InsurerID)
	}
	if f.NoInsurance {
		conds = append(conds,
			`NOT EXISTS (SELECT 1 FROM profesional_seguro x WHERE x.profesional_id = p.id)`)
	}

	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY p.id, s.id"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []professionalRow
	for rows.Next() {
		var r professionalRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Specialty, &r.Location, &r.Contact,
			&r.InsurerID, &r.InsurerName); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collapseProfessionals(flat)
}

// ProfessionalByID returns the aggregated view for one professional, or
// ErrNotFound when no such row exists. Zero affiliations is not an error.
func (s *Store) ProfessionalByID(ctx context.Context, id int64) (*model.Professional, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, p.nombre, p.especialidad, p.ubicacion, p.contacto, s.id, s.nombre
		 FROM profesionales p
		 LEFT JOIN profesional_seguro ps ON ps.profesional_id = p.id
		 LEFT JOIN seguros s ON s.id = ps.seguro_id
		 WHERE p.id = $1
		 ORDER BY s.id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []professionalRow
	for rows.Next() {
		var r professionalRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Specialty, &r.Location, &r.Contact,
			&r.InsurerID, &r.InsurerName); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return nil, ErrNotFound
	}
	ps, err := collapseProfessionals(flat)
	if err != nil {
		return nil, err
	}
	return &ps[0], nil
}

func (s *Store) ProfessionalExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profesionales WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// collapseProfessionals folds the one-row-per-(professional, insurer) join
// result into one record per professional, preserving first-seen professional
// order and the order of insurer rows. A pair with exactly one side NULL
// means the join produced inconsistent data and is reported, not dropped.
func collapseProfessionals(rows []professionalRow) ([]model.Professional, error) {
	var out []model.Professional
	idx := map[int64]int{}

	for _, r := range rows {
		i, seen := idx[r.ID]
		if !seen {
			out = append(out, model.Professional{
				ID:        r.ID,
				Name:      r.Name,
				Specialty: r.Specialty,
				Location:  r.Location,
				Contact:   r.Contact,
				Insurers:  []model.Insurer{},
			})
			i = len(out) - 1
			idx[r.ID] = i
		}

		if r.InsurerID == nil && r.InsurerName == nil {
			continue // no affiliations for this professional
		}
		if r.InsurerID == nil || r.InsurerName == nil {
			return nil, fmt.Errorf("professional %d: inconsistent insurer pair in join result", r.ID)
		}
		out[i].Insurers = append(out[i].Insurers, model.Insurer{ID: *r.InsurerID, Name: *r.InsurerName})
	}
	return out, nil
}
