package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"washops/pkg/e"
)

type Locations struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewLocations(pool *pgxpool.Pool, logger *slog.Logger) *Locations {
	return &Locations{pool: pool, logger: logger}
}

// LoadHierarchy returns city -> talukas as stored. An empty table yields an empty map.
func (p *Locations) LoadHierarchy(ctx context.Context) (map[string][]string, error) {
	const op = "postgres.Locations.LoadHierarchy"

	const query = `SELECT city, taluka FROM locations ORDER BY city, taluka`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var city, taluka string
		if err := rows.Scan(&city, &taluka); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out[city] = append(out[city], taluka)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

// Seed inserts the given pairs, leaving existing rows alone.
func (p *Locations) Seed(ctx context.Context, hierarchy map[string][]string) error {
	const op = "postgres.Locations.Seed"

	const query = `INSERT INTO locations (city, taluka) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	batch := &pgx.Batch{}
	for city, talukas := range hierarchy {
		for _, t := range talukas {
			batch.Queue(query, city, t)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		p.logger.Error("db batch failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}
