package main

import (
	"chat-inbox/internal"
	"chat-inbox/repositories"
	"chat-inbox/storage"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"INSPECT_BADGER_FILEPATH" required:"true"`
	// INSPECT_PORT serves the same rows as HTML when set
	Port int `envconfig:"INSPECT_PORT" default:"0"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := openDB(config.BadgerFilepath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()
	store := storage.NewBadgerStore(db)

	rows, err := internal.Collect(context.Background(), store, repositories.Keys, internal.BlobMapper)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "ID", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, row := range rows {
		table.Append([]string{row.Key, row.Type, row.Timestamp, row.EntityID, row.Detail})
	}
	table.Render()

	if config.Port == 0 {
		return
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/inspect", internal.NewInspectHandler(store, repositories.Keys, internal.BlobMapper))
	fmt.Printf("🌐 Inspector started at http://localhost:%d/inspect\n", config.Port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", config.Port), r))
}

// openDB opens read-only so a running inbox keeps its lock. A value log that
// needs truncating is repaired by one writable open first.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
