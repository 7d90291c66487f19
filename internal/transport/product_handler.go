package transport

import (
	"net/http"

	"vending-inventory/internal/middleware"
	"vending-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name  string `json:"name" validate:"required"`
	Price *int   `json:"price" validate:"required"`
}

// ProductHandler handles HTTP requests for the product catalog
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Mutations run behind guard.
func (h *ProductHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/all", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/create", h.CreateProduct)
			r.Delete("/{productID}", h.DeleteProduct)
		})
	})
}

// CreateProduct handles product registration
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), req.Name, *req.Price)
	if err != nil {
		h.logger.Debug("Create product failed", zap.Error(err))
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// ListProducts returns every product in insertion order
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product that no machine stocks
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted"})
}
