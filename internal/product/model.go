package product

import "time"

type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Category    *string   `json:"category" db:"category"`
	Images      []string  `json:"images" db:"images"`
	Stock       int       `json:"stock" db:"stock"`
	Featured    bool      `json:"featured" db:"featured"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Input holds every mutable field of a product. Create and Update both take the full set.
type Input struct {
	Name        string
	Description *string
	Price       float64
	Category    *string
	Images      []string
	Stock       int
	Featured    bool
}

// Filter narrows a listing. A nil Category matches every row.
type Filter struct {
	Category     *string
	FeaturedOnly bool
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Page struct {
	Products   []Product
	TotalCount int64
	Page       int
	Limit      int
}

func (p Page) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (p.TotalCount + int64(p.Limit) - 1) / int64(p.Limit)
}
