package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"washops/internal/domain"
	"washops/pkg/e"
)

type Profiles struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewProfiles(pool *pgxpool.Pool, logger *slog.Logger) *Profiles {
	return &Profiles{pool: pool, logger: logger}
}

const profileColumns = `
	id, name, role, COALESCE(employee_type, ''),
	COALESCE(city, ''), COALESCE(area, ''), COALESCE(taluko, ''),
	assigned_cities, assigned_talukas, active, rating
`

func scanProfile(row pgx.Row) (domain.Actor, error) {
	var (
		a               domain.Actor
		role, empType   string
		area, taluko    string
		cities, talukas []string
	)
	if err := row.Scan(
		&a.ID, &a.Name, &role, &empType,
		&a.HomeCity, &area, &taluko,
		&cities, &talukas, &a.Active, &a.Rating,
	); err != nil {
		return a, err
	}
	a.Role = parseRole(role)
	a.EmployeeType = domain.EmployeeType(domain.AreaKey(empType))
	a.HomeCity = domain.CanonicalArea(a.HomeCity)
	a.HomeArea = normalizeArea(area, taluko)
	a.AssignedCities = cleanNames(cities)
	a.AssignedTalukas = cleanNames(talukas)
	return a, nil
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if c := domain.CanonicalArea(n); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (p *Profiles) GetActor(ctx context.Context, id string) (*domain.Actor, error) {
	const op = "postgres.Profiles.GetActor"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	a, err := scanProfile(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return &a, nil
}

func (p *Profiles) ListProfiles(ctx context.Context) ([]domain.Actor, error) {
	const op = "postgres.Profiles.ListProfiles"

	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY name, id`
	return p.query(ctx, op, query)
}

// ListWashersByArea narrows the candidate set in SQL. The caller still applies
// domain.Worker.ServesArea, which is the authoritative rule.
func (p *Profiles) ListWashersByArea(ctx context.Context, area string) ([]domain.Actor, error) {
	const op = "postgres.Profiles.ListWashersByArea"

	key := domain.AreaKey(area)
	if key == "" {
		return []domain.Actor{}, nil
	}

	query := `SELECT ` + profileColumns + `
		FROM profiles
		WHERE ` + keySQL("COALESCE(role, '')") + ` = 'employee'
		  AND ` + keySQL("COALESCE(employee_type, '')") + ` = 'washer'
		  AND active
		  AND (
			` + keySQL(`COALESCE(NULLIF(`+keySQL("area")+`, ''), taluko, '')`) + ` = $1
			OR ` + keySQL("COALESCE(city, '')") + ` = $1
		  )`

	return p.query(ctx, op, query, key)
}

func (p *Profiles) query(ctx context.Context, op, query string, args ...any) ([]domain.Actor, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]domain.Actor, 0, 16)
	for rows.Next() {
		a, err := scanProfile(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

func (p *Profiles) UpdateAreas(ctx context.Context, id string, cities, talukas []string) error {
	const op = "postgres.Profiles.UpdateAreas"

	const query = `
		UPDATE profiles
		SET assigned_cities  = $2,
			assigned_talukas = $3
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query, id, cleanNames(cities), cleanNames(talukas))
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}
