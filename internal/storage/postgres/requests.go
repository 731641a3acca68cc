package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"washops/internal/domain"
	"washops/pkg/e"
)

type Requests struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewRequests(pool *pgxpool.Pool, logger *slog.Logger) *Requests {
	return &Requests{pool: pool, logger: logger}
}

const requestColumns = `
	id, user_id, status, address,
	COALESCE(city, ''), COALESCE(taluko, ''),
	car_model, car_plate, description, assigned_to,
	before_img_1, before_img_2, before_img_3, before_img_4,
	after_img_1, after_img_2, after_img_3, after_img_4,
	created_at, updated_at, completed_at
`

func scanRequest(row pgx.Row) (domain.EmergencyRequest, error) {
	var (
		r              domain.EmergencyRequest
		status, taluko string
		before, after  [domain.MaxImages]*string
	)
	err := row.Scan(
		&r.ID, &r.CustomerID, &status, &r.Address,
		&r.City, &taluko,
		&r.CarModel, &r.CarPlate, &r.Description, &r.AssignedTo,
		&before[0], &before[1], &before[2], &before[3],
		&after[0], &after[1], &after[2], &after[3],
		&r.CreatedAt, &r.UpdatedAt, &r.CompletedAt,
	)
	if err != nil {
		return r, err
	}
	r.Status = parseStatus(status)
	r.City = domain.CanonicalArea(r.City)
	r.Area = normalizeArea("", taluko)
	r.BeforeImages = packImages(before)
	r.AfterImages = packImages(after)
	return r, nil
}

func (p *Requests) Create(ctx context.Context, req *domain.EmergencyRequest) error {
	const op = "postgres.Requests.Create"

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}

	const query = `
		INSERT INTO emergency_wash_requests (
			id, user_id, status, address, city, taluko,
			car_model, car_plate, description, assigned_to,
			before_img_1, before_img_2, before_img_3, before_img_4,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	before := spreadImages(req.BeforeImages)
	_, err := p.pool.Exec(ctx, query,
		req.ID, req.CustomerID, string(req.Status), req.Address,
		nullIfBlank(req.City), nullIfBlank(req.Area),
		req.CarModel, req.CarPlate, req.Description, req.AssignedTo,
		before[0], before[1], before[2], before[3],
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("id", req.ID.String()),
		)
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *Requests) Get(ctx context.Context, id uuid.UUID) (*domain.EmergencyRequest, error) {
	const op = "postgres.Requests.Get"

	query := `SELECT ` + requestColumns + ` FROM emergency_wash_requests WHERE id = $1`

	r, err := scanRequest(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return &r, nil
}

// List returns requests newest first, optionally narrowed to one status.
// Visibility is decided by the caller's scope, not here.
func (p *Requests) List(ctx context.Context, status *domain.RequestStatus) ([]domain.EmergencyRequest, error) {
	const op = "postgres.Requests.List"

	query := `SELECT ` + requestColumns + ` FROM emergency_wash_requests`
	var args []any
	if status != nil {
		query += ` WHERE ` + statusKeySQL + ` = ANY($1)`
		args = append(args, status.Spellings())
	}
	query += ` ORDER BY created_at DESC, id`

	return p.query(ctx, op, query, args...)
}

// ListByAssignee is the washer queue: everything currently assigned to workerID.
func (p *Requests) ListByAssignee(ctx context.Context, workerID string) ([]domain.EmergencyRequest, error) {
	const op = "postgres.Requests.ListByAssignee"

	query := `SELECT ` + requestColumns + `
		FROM emergency_wash_requests
		WHERE assigned_to = $1
		ORDER BY created_at DESC, id`

	return p.query(ctx, op, query, workerID)
}

func (p *Requests) query(ctx context.Context, op, query string, args ...any) ([]domain.EmergencyRequest, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]domain.EmergencyRequest, 0, 16)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

// UpdateIfStatus persists a transition computed from a request that was read
// in status `expected`. It is a single conditional write: when another writer
// moved the row first nothing is written and ErrConflict is returned.
func (p *Requests) UpdateIfStatus(ctx context.Context, req *domain.EmergencyRequest, expected domain.RequestStatus) error {
	const op = "postgres.Requests.UpdateIfStatus"

	query := `
		UPDATE emergency_wash_requests
		SET status       = $3,
			assigned_to  = $4,
			before_img_1 = $5,
			before_img_2 = $6,
			before_img_3 = $7,
			before_img_4 = $8,
			after_img_1  = $9,
			after_img_2  = $10,
			after_img_3  = $11,
			after_img_4  = $12,
			updated_at   = $13,
			completed_at = COALESCE(completed_at, $14)
		WHERE id = $1 AND ` + statusKeySQL + ` = ANY($2)
	`

	before := spreadImages(req.BeforeImages)
	after := spreadImages(req.AfterImages)
	cmd, err := p.pool.Exec(ctx, query,
		req.ID, expected.Spellings(), string(req.Status), req.AssignedTo,
		before[0], before[1], before[2], before[3],
		after[0], after[1], after[2], after[3],
		req.UpdatedAt, req.CompletedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", req.ID.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: status is no longer %s: %w", op, expected, e.ErrConflict)
	}
	return nil
}
