package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"finance/internal/db"
	"finance/internal/models"
	"finance/internal/money"
	"finance/internal/services"
	"finance/internal/store"

	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
)

type dbPathKey struct{}

func withDBPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, dbPathKey{}, path)
}

func open(ctx context.Context) (*sqlx.DB, error) {
	path, _ := ctx.Value(dbPathKey{}).(string)
	if path == "" {
		return nil, errors.New("no database path")
	}
	return db.Connect(path)
}

// --- schema ---

type schemaCmd struct{}

func (*schemaCmd) Name() string     { return "schema" }
func (*schemaCmd) Synopsis() string { return "create missing tables and indexes" }
func (*schemaCmd) Usage() string {
	return `finance-admin [-db path] schema

Creates the users, orders and audit_logs tables if they do not exist. Safe to rerun.
`
}
func (*schemaCmd) SetFlags(*flag.FlagSet) {}

func (*schemaCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	database, err := open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer database.Close()
	if err := db.EnsureSchema(ctx, database); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating schema: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("schema up to date")
	return subcommands.ExitSuccess
}

// --- holdings ---

type holdingsCmd struct {
	username string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "replay a user's orders and print holdings and cash" }
func (*holdingsCmd) Usage() string {
	return `finance-admin [-db path] holdings -username <name>

Rebuilds the user's positions from the order log. No quotes are fetched.
`
}
func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "user to inspect")
}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" {
		fmt.Fprintln(os.Stderr, "Error: -username is required.")
		return subcommands.ExitUsageError
	}
	database, err := open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer database.Close()
	if err := printHoldings(ctx, os.Stdout, database, c.username); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printHoldings(ctx context.Context, w io.Writer, database store.DB, username string) error {
	user, err := store.NewUserStore(database).GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no user named %q", username)
	}
	if err != nil {
		return err
	}
	orders, err := store.NewOrderStore(database).ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSHARES")
	for _, h := range services.Replay(orders) {
		fmt.Fprintf(tw, "%s\t%d\n", h.Symbol, h.Shares)
	}
	fmt.Fprintf(tw, "CASH\t%s\n", money.FormatUSD(user.Cash))
	fmt.Fprintf(tw, "ORDERS\t%d\n", len(orders))
	return tw.Flush()
}

// --- audit ---

type auditCmd struct {
	limit int
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "print the most recent audit log entries" }
func (*auditCmd) Usage() string {
	return `finance-admin [-db path] audit [-limit n]
`
}
func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "number of entries")
}

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -limit must be positive.")
		return subcommands.ExitUsageError
	}
	database, err := open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer database.Close()
	entries, err := store.NewAuditStore(database).List(ctx, c.limit, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading audit log: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := printAudit(os.Stdout, entries); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printAudit(w io.Writer, entries []models.AuditEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTOR\tACTION\tENTITY\tDATA")
	for _, e := range entries {
		actor := "-"
		if e.ActorUserID != nil {
			actor = *e.ActorUserID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s/%s\t%s\n", e.CreatedAt, actor, e.Action, e.EntityType, e.EntityID, e.Data)
	}
	return tw.Flush()
}
