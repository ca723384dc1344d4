// Command migrate manages the forumbridge database schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"forumbridge/migrations"
)

const usage = `Usage: migrate [-db path] <command>

Commands:
  up        apply all pending migrations
  down      roll back the most recent migration
  status    print per-migration status
  version   print the current schema version
  reset     roll back everything`

var commands = map[string]func(*sql.DB) error{
	"up":      func(db *sql.DB) error { return goose.Up(db, ".") },
	"down":    func(db *sql.DB) error { return goose.Down(db, ".") },
	"status":  func(db *sql.DB) error { return goose.Status(db, ".") },
	"version": func(db *sql.DB) error { return goose.Version(db, ".") },
	"reset":   func(db *sql.DB) error { return goose.Reset(db, ".") },
}

func main() {
	defaultPath := os.Getenv("DATABASE_PATH")
	if defaultPath == "" {
		defaultPath = "./data/forumbridge.db"
	}
	dbPath := flag.String("db", defaultPath, "path to sqlite database")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", flag.Arg(0), usage)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	if err := cmd(db); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}
