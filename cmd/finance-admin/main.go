// Command finance-admin inspects and prepares the finance database.
package main

import (
	"context"
	"flag"
	"os"

	"finance/internal/config"

	"github.com/google/subcommands"
)

func main() {
	cfg := config.Load()

	commander := subcommands.NewCommander(flag.CommandLine, "finance-admin")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&schemaCmd{}, "database")
	commander.Register(&holdingsCmd{}, "inspect")
	commander.Register(&auditCmd{}, "inspect")

	dbPath := flag.String("db", cfg.DatabasePath, "path to the SQLite database file")
	flag.Parse()
	ctx := withDBPath(context.Background(), *dbPath)
	os.Exit(int(commander.Execute(ctx)))
}
