package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"washops/pkg/e"
)

// Schema is idempotent. Column names follow the rows the dashboards already
// write (user_id, taluko, before_img_N), so existing data loads unchanged.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id               text PRIMARY KEY,
	name             text NOT NULL DEFAULT '',
	role             text NOT NULL,
	employee_type    text,
	city             text,
	taluko           text,
	area             text,
	assigned_cities  text[] NOT NULL DEFAULT '{}',
	assigned_talukas text[] NOT NULL DEFAULT '{}',
	active           boolean NOT NULL DEFAULT true,
	rating           double precision NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS locations (
	city   text NOT NULL,
	taluka text NOT NULL,
	PRIMARY KEY (city, taluka)
);

CREATE TABLE IF NOT EXISTS emergency_wash_requests (
	id           uuid PRIMARY KEY,
	user_id      text NOT NULL,
	status       text NOT NULL,
	address      text NOT NULL DEFAULT '',
	city         text,
	taluko       text,
	car_model    text NOT NULL DEFAULT '',
	car_plate    text NOT NULL DEFAULT '',
	description  text NOT NULL DEFAULT '',
	assigned_to  text,
	before_img_1 text,
	before_img_2 text,
	before_img_3 text,
	before_img_4 text,
	after_img_1  text,
	after_img_2  text,
	after_img_3  text,
	after_img_4  text,
	created_at   timestamptz NOT NULL,
	updated_at   timestamptz NOT NULL,
	completed_at timestamptz
);

CREATE INDEX IF NOT EXISTS emergency_wash_requests_status_idx ON emergency_wash_requests (status);
CREATE INDEX IF NOT EXISTS emergency_wash_requests_assigned_idx ON emergency_wash_requests (assigned_to);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	const op = "postgres.Migrate"

	if _, err := pool.Exec(ctx, Schema); err != nil {
		logger.Error("schema migration failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}
