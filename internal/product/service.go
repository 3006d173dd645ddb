package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/shopping-mall/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPrice is the largest value NUMERIC(10,2) holds.
	MaxPrice = 99999999.99
)

type Service interface {
	Create(ctx context.Context, in Input) (*Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	ListPage(ctx context.Context, f Filter, p Pagination) (*Page, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, in Input) (*Product, error)
	Delete(ctx context.Context, id int64) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, in Input) (*Product, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		log.Error().Err(err).Str("name", in.Name).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Int64("product_id", p.ID).Msg("service: product created")
	return p, nil
}

func (s *service) List(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.repo.List(ctx, normalizeFilter(f))
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products in repository")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) ListPage(ctx context.Context, f Filter, p Pagination) (*Page, error) {
	if p.Page < 1 {
		return nil, apperr.NewValidation("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return nil, apperr.NewValidation("limit must be between 1 and %d", MaxLimit)
	}
	// (page-1)*limit must not overflow.
	if int64(p.Page-1) > math.MaxInt64/int64(p.Limit) {
		return nil, apperr.NewValidation("page is out of range")
	}

	page, err := s.repo.FindAll(ctx, normalizeFilter(f), p)
	if err != nil {
		log.Error().Err(err).Int("page", p.Page).Int("limit", p.Limit).Msg("service: failed to fetch products page in repository")
		return nil, fmt.Errorf("service: failed to fetch products page: %w", err)
	}

	return page, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("product_id", id).Msg("service: product not found by id")
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to fetch product by id in repository")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}

	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, in Input) (*Product, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("product_id", id).Msg("service: product not found for update")
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to update product in repository")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	log.Info().Int64("product_id", id).Msg("service: product updated")
	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Int64("product_id", id).Msg("service: product not found for delete")
			return nil, ErrNotFound
		}

		log.Error().Err(err).Int64("product_id", id).Msg("service: failed to delete product in repository")
		return nil, fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Int64("product_id", id).Msg("service: product deleted")
	return p, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories in repository")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}

	return categories, nil
}

func normalizeInput(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, apperr.NewValidation("name is required")
	}
	if math.IsNaN(in.Price) || in.Price < 0 || in.Price > MaxPrice {
		return Input{}, apperr.NewValidation("price must be between 0 and %.2f", MaxPrice)
	}
	if in.Stock < 0 || in.Stock > math.MaxInt32 {
		return Input{}, apperr.NewValidation("stock must be a non-negative integer")
	}

	in.Category = trimOrNil(in.Category)

	images := make([]string, 0, len(in.Images))
	for i, img := range in.Images {
		img = strings.TrimSpace(img)
		if img == "" {
			return Input{}, apperr.NewValidation("images[%d] must not be blank", i)
		}
		images = append(images, img)
	}
	in.Images = images

	return in, nil
}

func normalizeFilter(f Filter) Filter {
	f.Category = trimOrNil(f.Category)
	return f
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
