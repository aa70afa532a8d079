package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Postgres struct {
	pool DBPool
}

func NewPostgres(pool DBPool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, browser, key string) (string, bool, error) {
	var value string
	row := p.pool.QueryRow(ctx, `SELECT value FROM browser_state WHERE browser_id=$1 AND key=$2`, browser, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, browser, key, value string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO browser_state(browser_id, key, value)
		VALUES($1, $2, $3)
		ON CONFLICT (browser_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, browser, key, value)
	return err
}

func (p *Postgres) Delete(ctx context.Context, browser, key string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM browser_state WHERE browser_id=$1 AND key=$2`, browser, key)
	return err
}

// PurgeBefore drops values not written since cutoff and reports how many went.
func (p *Postgres) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM browser_state WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
