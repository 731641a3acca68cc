package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"washops/internal/domain"
	"washops/pkg/e"
)

type StatsRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStats(pool *pgxpool.Pool, logger *slog.Logger) *StatsRepo {
	return &StatsRepo{pool: pool, logger: logger}
}

// CountByStatus counts every request per status. Used for unrestricted
// scopes; scoped counts are computed from the filtered list instead.
func (p *StatsRepo) CountByStatus(ctx context.Context) (domain.RequestStats, error) {
	const op = "postgres.Stats.CountByStatus"

	const query = `SELECT status, COUNT(*) FROM emergency_wash_requests GROUP BY status`

	stats := domain.RequestStats{ByStatus: make(map[domain.RequestStatus]int)}

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return stats, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return stats, e.WrapError(ctx, op, err)
		}
		// stored spellings vary, so fold them before summing
		stats.ByStatus[parseStatus(raw)] += n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return stats, e.WrapError(ctx, op, err)
	}
	return stats, nil
}
