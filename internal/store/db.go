package store

import (
	"context"
	"database/sql"
	"time"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

type Tx interface {
	Execer
	Getter
}

// timeLayout is fixed width so TEXT timestamps sort chronologically.
const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		// rows written by CURRENT_TIMESTAMP have no fractional part
		t, _ = time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC)
	}
	return t
}
