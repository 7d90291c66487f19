package transport

import (
	"net/http"

	"vending-inventory/internal/middleware"
	"vending-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddStockRequest represents the payload that links a product to a machine
type AddStockRequest struct {
	MachineID *int64 `json:"vending_machine_id" validate:"required,gt=0"`
	ProductID *int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// EditStockRequest represents the stock quantity overwrite payload
type EditStockRequest struct {
	NewQuantity *int `json:"new_quantity" validate:"required"`
}

// StockLineResponse is one entry of a machine's stock listing
type StockLineResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StockHandler handles HTTP requests for the stock ledger
type StockHandler struct {
	stockService service.StockService
	logger       *zap.Logger
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// RegisterRoutes registers all stock routes and the snapshot root. Mutations run behind guard.
func (h *StockHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/", h.Snapshot)

	r.Route("/api/stocks", func(r chi.Router) {
		r.Get("/{machineID}", h.ListStock)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/add", h.AddStock)
			r.Put("/{machineID}/{productID}", h.EditStock)
			r.Delete("/{machineID}/{productID}", h.RemoveStock)
		})
	})
}

func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req AddStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add stock validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	stock, err := h.stockService.AddStock(r.Context(), *req.MachineID, *req.ProductID, *req.Quantity)
	if err != nil {
		h.logger.Debug("Add stock failed", zap.Error(err))
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product added to stocks",
		zap.Int64("machine_id", stock.MachineID),
		zap.Int64("product_id", stock.ProductID),
		zap.Int("quantity", stock.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, stock)
}

// ListStock returns the name and quantity of every product a machine holds
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	machineID, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}

	lines, err := h.stockService.ListStock(r.Context(), machineID)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	response := make([]StockLineResponse, 0, len(lines))
	for _, line := range lines {
		response = append(response, StockLineResponse{Name: line.Name, Quantity: line.Quantity})
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

func (h *StockHandler) EditStock(w http.ResponseWriter, r *http.Request) {
	machineID, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}

	var req EditStockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	stock, err := h.stockService.EditStockQuantity(r.Context(), machineID, productID, *req.NewQuantity)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stock)
}

func (h *StockHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	machineID, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}
	productID, ok := idParam(w, r, "productID")
	if !ok {
		return
	}

	if err := h.stockService.RemoveStock(r.Context(), machineID, productID); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted from stocks",
		zap.Int64("machine_id", machineID),
		zap.Int64("product_id", productID),
	)
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted from stocks"})
}

// Snapshot returns every machine, product and stock line
func (h *StockHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.stockService.Snapshot(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, snapshot)
}
