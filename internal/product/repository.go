package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
)

var ErrNotFound = &apperr.Error{Kind: apperr.NotFound, Message: "Product not found"}

type Repository interface {
	Create(ctx context.Context, in Input) (*Product, error)
	FindAll(ctx context.Context, f Filter, p Pagination) (*Page, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, in Input) (*Product, error)
	Delete(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// DB is the part of *pgxpool.Pool the repository needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type postgresRepository struct {
	db           DB
	queryTimeout time.Duration
}

func NewRepository(db DB, queryTimeout time.Duration) Repository {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &postgresRepository{db: db, queryTimeout: queryTimeout}
}

func (r *postgresRepository) Create(ctx context.Context, in Input) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		INSERT INTO products (name, description, price, category, images, stock, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + productColumns

	rows, err := r.db.Query(ctx, query,
		in.Name,
		in.Description,
		in.Price,
		in.Category,
		imagesOrEmpty(in.Images),
		in.Stock,
		in.Featured,
	)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to insert product", err)
	}

	p, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to insert product", err)
	}

	return &p, nil
}

// FindAll sends the count and the page in a single batch so both run on one connection.
func (r *postgresRepository) FindAll(ctx context.Context, f Filter, p Pagination) (page *Page, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	q := buildListQuery(f, &p)

	batch := &pgx.Batch{}
	batch.Queue(q.CountSQL, q.CountArgs...)
	batch.Queue(q.SQL, q.Args...)

	br := r.db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := br.Close(); closeErr != nil && err == nil {
			page = nil
			err = apperr.NewStoreUnavailable("repository: failed to close product batch", closeErr)
		}
	}()

	var total int64
	if err := br.QueryRow().Scan(&total); err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to count products", err)
	}

	rows, err := br.Query()
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to select products page", err)
	}
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to scan products page", err)
	}

	return &Page{
		Products:   products,
		TotalCount: total,
		Page:       p.Page,
		Limit:      p.Limit,
	}, nil
}

func (r *postgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	q := buildListQuery(f, nil)

	rows, err := r.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to select products", err)
	}
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to scan products", err)
	}

	return products, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return r.collectOne(ctx, "repository: failed to select product by id", query, id)
}

func (r *postgresRepository) Update(ctx context.Context, id int64, in Input) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, images = $5,
			stock = $6, featured = $7, updated_at = now()
		WHERE id = $8
		RETURNING ` + productColumns

	return r.collectOne(ctx, "repository: failed to update product", query,
		in.Name,
		in.Description,
		in.Price,
		in.Category,
		imagesOrEmpty(in.Images),
		in.Stock,
		in.Featured,
		id,
	)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	return r.collectOne(ctx, "repository: failed to delete product", query, id)
}

func (r *postgresRepository) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `
		SELECT DISTINCT category
		FROM products
		WHERE category IS NOT NULL
		ORDER BY category
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to select categories", err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperr.NewStoreUnavailable("repository: failed to scan categories", err)
	}

	return categories, nil
}

// collectOne runs a statement that yields at most one product row. No row means ErrNotFound.
func (r *postgresRepository) collectOne(ctx context.Context, op, query string, args ...any) (*Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.NewStoreUnavailable(op, err)
	}

	p, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.NewStoreUnavailable(op, err)
	}

	return &p, nil
}

func rowToProduct(row pgx.CollectableRow) (Product, error) {
	p, err := pgx.RowToStructByName[Product](row)
	if err == nil && p.Images == nil {
		p.Images = []string{}
	}
	return p, err
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
