package transport

import (
	"net/http"

	"vending-inventory/internal/middleware"
	"vending-inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateMachineRequest represents the machine registration payload
type CreateMachineRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// EditMachineRequest carries the fields to change. Absent or empty fields are left as they are.
type EditMachineRequest struct {
	NewName     *string `json:"new_name"`
	NewLocation *string `json:"new_location"`
}

// MachineHandler handles HTTP requests for the vending machine registry
type MachineHandler struct {
	machineService service.MachineService
	logger         *zap.Logger
}

// NewMachineHandler creates a new MachineHandler
func NewMachineHandler(machineService service.MachineService, logger *zap.Logger) *MachineHandler {
	return &MachineHandler{
		machineService: machineService,
		logger:         logger,
	}
}

// RegisterRoutes registers all vending machine routes. Mutations run behind guard.
func (h *MachineHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/api/vending_machines", func(r chi.Router) {
		r.Get("/all", h.ListMachines)
		r.Get("/{machineID}", h.GetMachine)

		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/create", h.CreateMachine)
			r.Put("/{machineID}", h.EditMachine)
			r.Delete("/{machineID}", h.DeleteMachine)
		})
	})
}

func (h *MachineHandler) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var req CreateMachineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create machine validation failed", zap.Error(err))
		respondWithDecodeError(w, err)
		return
	}

	machine, err := h.machineService.CreateMachine(r.Context(), req.Name, req.Location)
	if err != nil {
		h.logger.Debug("Create machine failed", zap.Error(err))
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Vending machine created", zap.Int64("machine_id", machine.ID), zap.String("name", machine.Name))
	middleware.RespondWithJSON(w, http.StatusCreated, machine)
}

// EditMachine applies a partial update; an empty body returns the machine unchanged
func (h *MachineHandler) EditMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}

	var req EditMachineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, err)
		return
	}

	machine, err := h.machineService.EditMachine(r.Context(), id, deref(req.NewName), deref(req.NewLocation))
	if err != nil {
		h.logger.Debug("Edit machine failed", zap.Int64("machine_id", id), zap.Error(err))
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, machine)
}

// DeleteMachine removes a machine together with its stock lines
func (h *MachineHandler) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}

	if err := h.machineService.DeleteMachine(r.Context(), id); err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Vending machine deleted", zap.Int64("machine_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Vending machine deleted"})
}

func (h *MachineHandler) ListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.machineService.ListMachines(r.Context())
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, machines)
}

func (h *MachineHandler) GetMachine(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "machineID")
	if !ok {
		return
	}

	machine, err := h.machineService.GetMachine(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, machine)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
