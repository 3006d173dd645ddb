package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/shopping-mall/internal/db"
	"github.com/vasiliy-maslov/shopping-mall/internal/db/dbtest"
)

func TestBootstrap_CreatesSchemaAndSeedsOnce(t *testing.T) {
	pool := dbtest.NewEmptyPool(t)
	ctx := context.Background()

	res, err := db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: true})
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.MigrationVersion)
	assert.Equal(t, 6, res.SeededProducts)

	res, err = db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: true})
	require.NoError(t, err, "second bootstrap must be a no-op")
	assert.Equal(t, 0, res.SeededProducts)

	var total int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&total))
	assert.Equal(t, 6, total)

	rows, err := pool.Query(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	require.NoError(t, err)
	defer rows.Close()
	var categories []string
	for rows.Next() {
		var c string
		require.NoError(t, rows.Scan(&c))
		categories = append(categories, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Accessories", "Clothing", "Electronics", "Footwear", "Home"}, categories)
}

func TestBootstrap_SkipsSeedWhenCatalogHasRows(t *testing.T) {
	pool := dbtest.NewEmptyPool(t)
	ctx := context.Background()

	_, err := db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: false})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "INSERT INTO products (name, price) VALUES ('Existing', 1.50)")
	require.NoError(t, err)

	res, err := db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.SeededProducts)

	var total int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&total))
	assert.Equal(t, 1, total)
}

func TestBootstrap_UpgradesLegacyProductsTable(t *testing.T) {
	pool := dbtest.NewEmptyPool(t)
	ctx := context.Background()

	// Shape written by the first storefront release: no images, no updated_at.
	_, err := pool.Exec(ctx, `
		CREATE TABLE products (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(10,2) NOT NULL,
			category VARCHAR(100),
			stock INTEGER DEFAULT 0,
			featured BOOLEAN DEFAULT false,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	require.NoError(t, err)

	_, err = db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: true})
	require.NoError(t, err)

	var images []string
	require.NoError(t, pool.QueryRow(ctx, "SELECT images FROM products ORDER BY id LIMIT 1").Scan(&images))
	assert.Empty(t, images)
}

func TestBootstrap_ConcurrentStartersSeedOnce(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	const starters = 4
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		seeded int
		errs   []error
	)
	for i := 0; i < starters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := db.Bootstrap(ctx, pool, db.BootstrapOptions{Seed: true})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seeded += res.SeededProducts
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 6, seeded)

	var total int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&total))
	assert.Equal(t, 6, total)
}
