package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"analogy-eval/api"
	"analogy-eval/config"
	"analogy-eval/db"
	"analogy-eval/suggest"
)

var errNoAnnotators = errors.New("no annotators given (-u)")

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "annotation table to review"},
		&cli.StringSliceFlag{Name: "user", Aliases: []string{"u"}, Usage: "users to vote"},
		&cli.StringFlag{Name: "host", Usage: "Host address"},
		&cli.StringFlag{Name: "port", Usage: "Port number"},
		&cli.StringFlag{Name: "data-path", Usage: "Path to store data files"},
		&cli.IntFlag{Name: "interval", Usage: "Persistence interval in seconds"},
	}
}

func serveCommand(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("user") {
		cfg.Suggest.Annotators = c.StringSlice("user")
	}
	if c.IsSet("host") {
		cfg.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.String("port")
	}
	if c.IsSet("data-path") {
		cfg.Storage.DataPath = c.String("data-path")
	}
	if c.IsSet("interval") {
		cfg.Storage.PersistenceInterval = c.Int("interval")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Suggest.Annotators) == 0 {
		return errNoAnnotators
	}

	// Create table manager
	dbManager := db.NewManager()
	persistence := db.NewPersistenceManager(cfg.Storage.DataPath)

	// Load saved tables, votes included
	if err := loadTables(dbManager, persistence, cfg.Suggest.Annotators); err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}

	if input := c.String("input"); input != "" {
		if err := addTable(dbManager, input, cfg.Suggest.Annotators); err != nil {
			return err
		}
	}

	// Start persistence worker
	stopPersistence := make(chan struct{})
	go persistenceWorker(dbManager, persistence, cfg.Storage.PersistenceInterval, stopPersistence)

	// Create and start API server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	printWelcome(c.App.Writer, addr, dbManager.ListTables())

	apiServer := api.NewServer(dbManager)
	go func() {
		log.Info("Starting API server on ", addr)
		if err := apiServer.Start(addr); err != nil {
			log.Fatal("Failed to start API server: ", err)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	<-sigChan
	log.Info("Shutting down...")

	// Stop persistence worker
	close(stopPersistence)

	// Save all tables one last time
	saveAllTables(dbManager, persistence, true)
	return nil
}

/*
tableName is the file name of path without its extension
*/
func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

/*
addTable registers the table at path unless a saved table of the same name
was already loaded
*/
func addTable(dbManager *db.Manager, path string, annotators []string) error {
	name := tableName(path)
	if _, err := dbManager.GetTable(name); err == nil {
		log.WithField("table", name).Info("resuming saved table")
		return nil
	}

	t, err := suggest.LoadCSV(path, annotators)
	if err != nil {
		return err
	}
	if len(t.Annotators) == 0 {
		return fmt.Errorf("%s: %w", path, errNoAnnotators)
	}

	_, err = dbManager.CreateTable(name, t)
	return err
}

func loadTables(dbManager *db.Manager, persistence *db.PersistenceManager, annotators []string) error {
	tables, err := persistence.ListTables()
	if err != nil {
		return err
	}

	for _, name := range tables {
		t, err := persistence.LoadTable(name, annotators)
		if err != nil {
			log.Errorf("Failed to load table %s: %v", name, err)
			continue
		}

		if _, err := dbManager.CreateTable(name, t); err != nil {
			log.Errorf("Failed to create table %s: %v", name, err)
			continue
		}
	}

	return nil
}

/*
saveAllTables writes the tables with new votes, or every table when all is set
*/
func saveAllTables(dbManager *db.Manager, persistence *db.PersistenceManager, all bool) {
	for _, name := range dbManager.ListTables() {
		t, err := dbManager.GetTable(name)
		if err != nil {
			log.Errorf("Failed to get table %s: %v", name, err)
			continue
		}
		if !t.TakeDirty() && !all {
			continue
		}

		if err := persistence.SaveTable(t); err != nil {
			log.Errorf("Failed to save table %s: %v", name, err)
			t.MarkDirty()
		}
	}
}

func persistenceWorker(dbManager *db.Manager, persistence *db.PersistenceManager, interval int, stop chan struct{}) {
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			saveAllTables(dbManager, persistence, false)
		case <-stop:
			return
		}
	}
}

func printWelcome(w io.Writer, addr string, tables []string) {
	fmt.Fprintf(w, "Reviewing %d table(s) on http://%s\n", len(tables), addr)
	for _, name := range tables {
		fmt.Fprintf(w, "  /api/tables/%s\n", name)
	}
}
