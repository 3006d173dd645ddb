package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/shopping-mall/internal/product"
)

type ProductRequest struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Images      []string `json:"images" validate:"omitempty,dive,required,max=2048"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Featured    bool     `json:"featured"`
}

func (req ProductRequest) toInput() product.Input {
	in := product.Input{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
		Featured:    req.Featured,
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.Stock != nil {
		in.Stock = *req.Stock
	}
	return in
}

type ProductResponse struct {
	Success bool             `json:"success"`
	Product *product.Product `json:"product"`
}

type ProductListResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Products []product.Product `json:"products"`
}

type ProductPageResponse struct {
	Success    bool              `json:"success"`
	Count      int               `json:"count"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int64             `json:"total_pages"`
	Products   []product.Product `json:"products"`
}

type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
	router.Get("/categories", h.handleListCategories)
}

// handleListProducts serves the unpaginated listing unless page or limit is given.
func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter product.Filter
	if category := strings.TrimSpace(query.Get("category")); category != "" {
		filter.Category = &category
	}
	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid featured parameter")
			return
		}
		filter.FeaturedOnly = featured
	}

	if !query.Has("page") && !query.Has("limit") {
		products, err := h.service.List(r.Context(), filter)
		if err != nil {
			respondWithServiceError(w, r, err)
			return
		}
		if products == nil {
			products = []product.Product{}
		}
		respondWithJSON(w, http.StatusOK, ProductListResponse{
			Success:  true,
			Count:    len(products),
			Products: products,
		})
		return
	}

	pagination := product.Pagination{Page: product.DefaultPage, Limit: product.DefaultLimit}
	var ok bool
	if pagination.Page, ok = intParam(query.Get("page"), product.DefaultPage); !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid page parameter")
		return
	}
	if pagination.Limit, ok = intParam(query.Get("limit"), product.DefaultLimit); !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	page, err := h.service.ListPage(r.Context(), filter, pagination)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	products := page.Products
	if products == nil {
		products = []product.Product{}
	}

	respondWithJSON(w, http.StatusOK, ProductPageResponse{
		Success:    true,
		Count:      len(products),
		Total:      page.TotalCount,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(),
		Products:   products,
	})
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	p, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Delete(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ProductResponse{Success: true, Product: p})
}

func (h *ProductHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	respondWithJSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: categories})
}

func (h *ProductHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (product.Input, bool) {
	var requestPayload ProductRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithDecodeError(w, r, err)
		return product.Input{}, false
	}
	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return product.Input{}, false
	}
	return requestPayload.toInput(), true
}

// productID parses the {id} URL parameter. Ids are positive SERIAL values.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 32)
	if err != nil || id < 1 {
		log.Warn().Str("product_id", idParam).Msg("failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return id, true
}

func intParam(raw string, def int) (int, bool) {
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
