package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/hacks11/inventory-health/backend-go/internal/config"
	"github.com/hacks11/inventory-health/backend-go/internal/storage"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	// Initialize database connection
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	// Close the database connection when done
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not found in context")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Import restaurant inventory training exports into the database",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import combined inventory CSV files (dimensions plus daily log)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing inventory CSV exports",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file workers",
						Value: 1,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runImport,
			},
			{
				Name:  "fetch",
				Usage: "Download seed CSV exports from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Destination directory for downloaded exports",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runFetch,
			},
			{
				Name:  "verify",
				Usage: "Print row counts for the imported tables",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Before: initDB,
				After:  closeDB,
				Action: runVerify,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runImport(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	dataDir := c.String("data-dir")
	workerCount := c.Int("workers")
	if workerCount < 1 {
		workerCount = 1
	}

	files, err := collectCSVFiles(dataDir)
	if err != nil {
		return fmt.Errorf("error walking data directory: %w", err)
	}
	if len(files) == 0 {
		log.Printf("No CSV files found in %s", dataDir)
		return nil
	}

	importer := NewImporter(db)

	log.Printf("Processing %d file(s) with %d worker(s)...", len(files), workerCount)
	return processFilesWithWorkers(c.Context, files, workerCount, func(path string) error {
		log.Printf("Importing file: %s", path)
		if err := importer.ImportFile(c.Context, path); err != nil {
			return fmt.Errorf("error importing %s: %w", path, err)
		}
		return nil
	})
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()
	if cfg.Storage.Endpoint == "" {
		return fmt.Errorf("no object storage endpoint configured")
	}

	store, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		return err
	}

	dataDir := c.String("data-dir")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	objects, err := store.ListObjects(c.Context, cfg.Storage.SeedPrefix)
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		log.Printf("No seed objects found under %s", cfg.Storage.SeedPrefix)
		return nil
	}

	for _, obj := range objects {
		dest := filepath.Join(dataDir, filepath.Base(obj.Key))
		log.Printf("Downloading %s (%d bytes) -> %s", obj.Key, obj.Size, dest)
		if err := store.DownloadObject(c.Context, obj.Key, dest); err != nil {
			return err
		}
	}

	return nil
}

func runVerify(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	tables := []string{
		"restaurants",
		"ingredients",
		"holidays",
		"restaurant_ingredients",
		"daily_inventory_log",
	}

	for _, table := range tables {
		var count int64
		if err := db.QueryRowContext(c.Context, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		log.Printf("  %s: %d rows", table, count)
	}

	return nil
}

func collectCSVFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".csv" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func processFilesWithWorkers(ctx context.Context, files []string, workers int, fn func(string) error) error {
	if len(files) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobs := make(chan string)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case path, ok := <-jobs:
					if !ok {
						return
					}
					if err := fn(path); err != nil {
						select {
						case errCh <- err:
						default:
						}
						cancel()
						return
					}
				}
			}
		}()
	}
loop:
	for _, path := range files {
		select {
		case <-ctx.Done():
			break loop
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()
	select {
	case err := <-errCh:
		return err
	default:
		if ctx.Err() != nil && ctx.Err() != context.Canceled {
			return ctx.Err()
		}
	}
	return nil
}
