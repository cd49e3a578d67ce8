package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dairyledger/milk-collection/internal/api/metrics"
	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
)

// MilkHandler handles HTTP requests for milk record operations.
type MilkHandler struct {
	service ports.MilkService
}

func NewMilkHandler(service ports.MilkService) *MilkHandler {
	return &MilkHandler{service: service}
}

// --- Request types ---

type createMilkRequest struct {
	UserID    string     `json:"userId" validate:"required"`
	MilkType  string     `json:"milkType" validate:"required,max=50"`
	Quantity  int        `json:"quantity" validate:"gt=0"`
	Rate      float64    `json:"rate" validate:"gt=0"`
	Amount    *float64   `json:"amount,omitempty"` // ignored, always derived
	EntryDate *time.Time `json:"entryDate,omitempty"`
}

type updateMilkRequest struct {
	MilkType  string     `json:"milkType" validate:"required,max=50"`
	Quantity  *int       `json:"quantity" validate:"required,gt=0"`
	Rate      *float64   `json:"rate" validate:"required,gt=0"`
	Amount    *float64   `json:"amount,omitempty"` // ignored, always derived
	EntryDate *time.Time `json:"entryDate,omitempty"`
}

// Create handles POST /api/milk.
//
// @Summary      Create a milk record for a user
// @Tags         milk
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the original record when repeated"
// @Param        body             body      createMilkRequest  true   "Milk record"
// @Success      201              {object}  envelope
// @Success      200              {object}  envelope  "idempotent replay"
// @Failure      409              {object}  map[string]string  "same Idempotency-Key still in progress"
// @Failure      400              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Router       /api/milk [post]
func (h *MilkHandler) Create(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req createMilkRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RecordOperationsTotal.WithLabelValues("create", resultLabel(err)).Inc()
		return err
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateMilkInput{
		OwnerUserID:    req.UserID,
		MilkType:       req.MilkType,
		Quantity:       req.Quantity,
		Rate:           req.Rate,
		EntryDate:      req.EntryDate,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	}, actor)
	if err != nil {
		metrics.RecordOperationsTotal.WithLabelValues("create", resultLabel(err)).Inc()
		return err
	}

	if result.AlreadyExisted {
		metrics.IdempotentReplaysTotal.Inc()
		c.Response().Header().Set("Idempotent-Replayed", "true")
		return h.respondOne(c, http.StatusOK, "Milk record already created", result.Record)
	}

	metrics.RecordOperationsTotal.WithLabelValues("create", "ok").Inc()
	metrics.RecordsCreatedTotal.WithLabelValues(result.Record.MilkType).Inc()
	metrics.RecordedQuantityTotal.Add(float64(result.Record.Quantity))

	return h.respondOne(c, http.StatusCreated, "Milk record created successfully", result.Record)
}

// ListAll handles GET /api/milk.
//
// @Summary      List milk records visible to the caller
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      403  {object}  map[string]string
// @Router       /api/milk [get]
func (h *MilkHandler) ListAll(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	records, err := h.service.ListForActor(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return h.respondList(c, "Milk records retrieved successfully", records)
}

// ListMine handles GET /api/milk/my-milk.
//
// @Summary      List the caller's own milk records
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /api/milk/my-milk [get]
func (h *MilkHandler) ListMine(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	records, err := h.service.ListByOwner(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return h.respondList(c, "Your milk records retrieved successfully", records)
}

// ListByUser handles GET /api/milk/user/:userId.
//
// @Summary      List the milk records of one user
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Owner user id"
// @Success      200     {object}  envelope
// @Failure      403     {object}  map[string]string
// @Router       /api/milk/user/{userId} [get]
func (h *MilkHandler) ListByUser(c echo.Context) error {
	records, err := h.service.ListByOwner(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return h.respondList(c, "User milk records retrieved successfully", records)
}

// ListByType handles GET /api/milk/type/:milkType.
//
// @Summary      List milk records of one type
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Param        milkType  path      string  true  "Milk type"
// @Success      200       {object}  envelope
// @Router       /api/milk/type/{milkType} [get]
func (h *MilkHandler) ListByType(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	records, err := h.service.ListByType(c.Request().Context(), c.Param("milkType"), actor)
	if err != nil {
		return err
	}
	return h.respondList(c, "Milk records retrieved successfully", records)
}

// Get handles GET /api/milk/:id.
//
// @Summary      Get a milk record
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  map[string]string
// @Router       /api/milk/{id} [get]
func (h *MilkHandler) Get(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	record, err := h.service.GetByID(c.Request().Context(), c.Param("id"), actor)
	if err != nil {
		return err
	}
	return h.respondOne(c, http.StatusOK, "Milk record retrieved successfully", record)
}

// Update handles PUT /api/milk/:id.
//
// @Summary      Replace a milk record
// @Tags         milk
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Record id"
// @Param        body  body      updateMilkRequest  true  "New values"
// @Success      200   {object}  envelope
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/milk/{id} [put]
func (h *MilkHandler) Update(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req updateMilkRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.RecordOperationsTotal.WithLabelValues("update", resultLabel(err)).Inc()
		return err
	}

	record, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateMilkInput{
		MilkType:  req.MilkType,
		Quantity:  req.Quantity,
		Rate:      req.Rate,
		EntryDate: req.EntryDate,
	}, actor)
	if err != nil {
		metrics.RecordOperationsTotal.WithLabelValues("update", resultLabel(err)).Inc()
		return err
	}

	metrics.RecordOperationsTotal.WithLabelValues("update", "ok").Inc()
	return h.respondOne(c, http.StatusOK, "Milk record updated successfully", record)
}

// Delete handles DELETE /api/milk/:id.
//
// @Summary      Delete a milk record
// @Tags         milk
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Record id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/milk/{id} [delete]
func (h *MilkHandler) Delete(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteByID(c.Request().Context(), c.Param("id"), actor); err != nil {
		metrics.RecordOperationsTotal.WithLabelValues("delete", resultLabel(err)).Inc()
		return err
	}

	metrics.RecordOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return c.JSON(http.StatusOK, success("Milk record deleted successfully", nil))
}

func (h *MilkHandler) respondList(c echo.Context, message string, records []*domain.MilkRecord) error {
	owners, err := h.service.OwnerSummaries(c.Request().Context(), records)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(message, toMilkRecordResponses(records, owners)))
}

func (h *MilkHandler) respondOne(c echo.Context, status int, message string, record *domain.MilkRecord) error {
	owners, err := h.service.OwnerSummaries(c.Request().Context(), []*domain.MilkRecord{record})
	if err != nil {
		return err
	}
	return c.JSON(status, success(message, toMilkRecordResponse(record, owners)))
}

// resultLabel maps an operation error to a bounded metric label.
func resultLabel(err error) string {
	var he *echo.HTTPError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMilkRecordNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidCredentials),
		errors.As(err, &he) && he.Code == http.StatusBadRequest:
		return "invalid"
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrRequestInProgress):
		return "conflict"
	default:
		return "error"
	}
}
