package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type BootstrapOptions struct {
	// Seed inserts the sample catalog when the products table is empty.
	Seed bool
}

type BootstrapResult struct {
	MigrationVersion uint
	SeededProducts   int
}

// Bootstrap brings the schema up to date and seeds the sample catalog. It is safe to run on
// every start and from several instances at once.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, opts BootstrapOptions) (BootstrapResult, error) {
	var res BootstrapResult

	version, err := applyMigrations(pool)
	if err != nil {
		return res, err
	}
	res.MigrationVersion = version

	if !opts.Seed {
		return res, nil
	}

	seeded, err := seedProducts(ctx, pool, sampleProducts)
	if err != nil {
		return res, err
	}
	res.SeededProducts = seeded

	return res, nil
}

func applyMigrations(pool *pgxpool.Pool) (uint, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return 0, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", srcErr).AnErr("database_error", dbErr).Msg("Failed to close migration instance")
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("No new migrations to apply")
	case err != nil:
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	default:
		log.Info().Msg("New migrations applied successfully")
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migration version %d is dirty", version)
	}

	return version, nil
}

type seedProduct struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Featured    bool
}

var sampleProducts = []seedProduct{
	{"Wireless Bluetooth Headphones", "High-quality wireless headphones with noise cancellation", 99.99, "Electronics", 50, true},
	{"Smart Watch", "Feature-rich smartwatch with health monitoring", 199.99, "Electronics", 30, true},
	{"Cotton T-Shirt", "Comfortable cotton t-shirt in various colors", 19.99, "Clothing", 100, false},
	{"Running Shoes", "Lightweight running shoes for maximum comfort", 79.99, "Footwear", 25, true},
	{"Laptop Backpack", "Durable laptop backpack with USB charging port", 49.99, "Accessories", 75, false},
	{"Coffee Maker", "Automatic drip coffee maker with timer", 89.99, "Home", 40, true},
}

// seedProducts inserts rows only into an empty catalog. The table lock makes the emptiness check
// and the inserts one step for concurrent starters; readers are not blocked by it.
func seedProducts(ctx context.Context, pool *pgxpool.Pool, rows []seedProduct) (inserted int, err error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("seed: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("seed: failed to rollback transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			inserted = 0
			err = fmt.Errorf("seed: failed to commit transaction: %w", commitErr)
		}
	}()

	if _, err = tx.Exec(ctx, "LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return 0, fmt.Errorf("seed: failed to lock products: %w", err)
	}

	var count int64
	if err = tx.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return 0, fmt.Errorf("seed: failed to count products: %w", err)
	}
	if count > 0 {
		log.Debug().Int64("products", count).Msg("seed: catalog is not empty, skipping")
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(`
			INSERT INTO products (name, description, price, category, stock, featured)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.Name, p.Description, p.Price, p.Category, p.Stock, p.Featured)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("seed: failed to insert sample products: %w", err)
	}

	log.Info().Int("products", len(rows)).Msg("Sample products inserted")
	return len(rows), nil
}
