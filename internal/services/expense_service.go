package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cashtrack/backend/internal/models"
)

// ExpenseService is the gasto ledger. Every operation is scoped to the
// authenticated caller; a foreign id behaves exactly like a missing one.
type ExpenseService struct {
	db        *sql.DB
	validator *ValidationHelper
}

// GastoRequest represents the expense creation payload
// @Description Expense creation request
type GastoRequest struct {
	Categoria string      `json:"categoria" validate:"required" example:"comida"`
	Cantidad  json.Number `json:"cantidad" validate:"required" swaggertype:"string" example:"30.00"`
	Fecha     string      `json:"fecha" validate:"omitempty,datetime=2006-01-02" example:"2025-01-31"`
}

// GastoUpdateRequest represents a partial expense update
// @Description Expense update request; absent fields keep their value
type GastoUpdateRequest struct {
	Categoria *string      `json:"categoria" example:"transporte"`
	Cantidad  *json.Number `json:"cantidad" swaggertype:"string" example:"12.50"`
	Fecha     *string      `json:"fecha" example:"2025-02-01"`
}

// PresupuestoRequest represents the budget update payload
// @Description Budget update request
type PresupuestoRequest struct {
	Presupuesto json.Number `json:"presupuesto" validate:"required" swaggertype:"string" example:"100.00"`
}

func NewExpenseService(db *sql.DB) *ExpenseService {
	return &ExpenseService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// ListGastos lists the caller's expenses
// @Summary List expenses
// @Description List the authenticated user's expenses in insertion order
// @Tags gastos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Gasto
// @Failure 401 {object} ErrorResponse
// @Router /gastos [get]
func (s *ExpenseService) ListGastos(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	gastos, err := s.fetchGastos(userID)
	if err != nil {
		log.Printf("[GASTOS] List failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch expenses", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, gastos)
}

// CreateGasto records a new expense
// @Summary Create expense
// @Description Record an expense; fecha defaults to today
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GastoRequest true "Expense"
// @Success 201 {object} models.Gasto
// @Failure 400 {object} ErrorResponse
// @Router /gastos [post]
func (s *ExpenseService) CreateGasto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	var req GastoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if !models.ValidCategoria(req.Categoria) {
		SendErrorResponse(w, "Categoría inválida", http.StatusBadRequest, nil)
		return
	}

	cantidad, err := decimal.NewFromString(req.Cantidad.String())
	if err != nil || !cantidad.IsPositive() {
		SendErrorResponse(w, "Cantidad inválida", http.StatusBadRequest, nil)
		return
	}

	fecha := models.Today()
	if req.Fecha != "" {
		fecha, err = models.ParseDate(req.Fecha)
		if err != nil {
			SendErrorResponse(w, "Fecha inválida", http.StatusBadRequest, nil)
			return
		}
	}

	gasto := models.Gasto{
		UserID:    userID,
		Categoria: req.Categoria,
		Cantidad:  cantidad,
		Fecha:     fecha,
	}
	err = s.db.QueryRowContext(r.Context(),
		`INSERT INTO gastos (user_id, fecha, cantidad, categoria) VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, gasto.Fecha, gasto.Cantidad, gasto.Categoria).Scan(&gasto.ID)
	if err != nil {
		log.Printf("[GASTOS] Create failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to create expense", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[GASTOS] Created expense %d for user %d", gasto.ID, userID)
	SendJSON(w, http.StatusCreated, gasto)
}

// GetGasto retrieves one expense
// @Summary Get expense by id
// @Tags gastos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} models.Gasto
// @Failure 404 {object} ErrorResponse
// @Router /gastos/{id} [get]
func (s *ExpenseService) GetGasto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}

	gasto, err := s.fetchGasto(userID, id)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[GASTOS] Fetch failed for user %d gasto %d: %v", userID, id, err)
		SendErrorResponse(w, "Failed to fetch expense", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, gasto)
}

// UpdateGasto updates fields of one expense
// @Summary Update expense
// @Description Partial update; omitted fields are left unchanged
// @Tags gastos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param request body GastoUpdateRequest true "Fields to change"
// @Success 200 {object} models.Gasto
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /gastos/{id} [put]
func (s *ExpenseService) UpdateGasto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}

	var req GastoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}

	gasto, err := s.fetchGasto(userID, id)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[GASTOS] Fetch failed for user %d gasto %d: %v", userID, id, err)
		SendErrorResponse(w, "Failed to fetch expense", http.StatusInternalServerError, nil)
		return
	}

	if req.Categoria != nil {
		if !models.ValidCategoria(*req.Categoria) {
			SendErrorResponse(w, "Categoría inválida", http.StatusBadRequest, nil)
			return
		}
		gasto.Categoria = *req.Categoria
	}
	if req.Cantidad != nil {
		cantidad, err := decimal.NewFromString(req.Cantidad.String())
		if err != nil || !cantidad.IsPositive() {
			SendErrorResponse(w, "Cantidad inválida", http.StatusBadRequest, nil)
			return
		}
		gasto.Cantidad = cantidad
	}
	if req.Fecha != nil {
		fecha, err := models.ParseDate(*req.Fecha)
		if err != nil {
			SendErrorResponse(w, "Fecha inválida", http.StatusBadRequest, nil)
			return
		}
		gasto.Fecha = fecha
	}

	_, err = s.db.ExecContext(r.Context(),
		`UPDATE gastos SET fecha = $1, cantidad = $2, categoria = $3 WHERE id = $4 AND user_id = $5`,
		gasto.Fecha, gasto.Cantidad, gasto.Categoria, gasto.ID, userID)
	if err != nil {
		log.Printf("[GASTOS] Update failed for user %d gasto %d: %v", userID, id, err)
		SendErrorResponse(w, "Failed to update expense", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, gasto)
}

// DeleteGasto removes one expense
// @Summary Delete expense
// @Tags gastos
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Router /gastos/{id} [delete]
func (s *ExpenseService) DeleteGasto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`DELETE FROM gastos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Printf("[GASTOS] Delete failed for user %d gasto %d: %v", userID, id, err)
		SendErrorResponse(w, "Failed to delete expense", http.StatusInternalServerError, nil)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		SendErrorResponse(w, "Gasto no encontrado", http.StatusNotFound, nil)
		return
	}

	log.Printf("[GASTOS] Deleted expense %d for user %d", id, userID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePresupuesto sets the caller's budget
// @Summary Update budget
// @Tags presupuesto
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PresupuestoRequest true "New budget"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /presupuesto [post]
func (s *ExpenseService) UpdatePresupuesto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req PresupuestoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, "Debes enviar un valor", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Debes enviar un valor", http.StatusBadRequest, err)
		return
	}

	presupuesto, err := decimal.NewFromString(req.Presupuesto.String())
	if err != nil || presupuesto.IsNegative() {
		SendErrorResponse(w, "Valor de presupuesto inválido", http.StatusBadRequest, nil)
		return
	}

	res, err := s.db.ExecContext(r.Context(),
		`UPDATE usuarios SET presupuesto = $1 WHERE id = $2`, presupuesto, userID)
	if err != nil {
		log.Printf("[PRESUPUESTO] Update failed for user %d: %v", userID, err)
		SendErrorResponse(w, "Failed to update budget", http.StatusInternalServerError, nil)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		SendErrorResponse(w, "Usuario no encontrado", http.StatusNotFound, nil)
		return
	}

	log.Printf("[PRESUPUESTO] Updated budget for user %d", userID)
	SendJSON(w, http.StatusOK, map[string]any{
		"message":     "Presupuesto actualizado con éxito",
		"presupuesto": presupuesto.InexactFloat64(),
	})
}

func (s *ExpenseService) fetchGastos(userID int) ([]models.Gasto, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, categoria, cantidad, fecha FROM gastos WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gastos := make([]models.Gasto, 0)
	for rows.Next() {
		var g models.Gasto
		if err := rows.Scan(&g.ID, &g.UserID, &g.Categoria, &g.Cantidad, &g.Fecha); err != nil {
			return nil, err
		}
		gastos = append(gastos, g)
	}
	return gastos, rows.Err()
}

func (s *ExpenseService) fetchGasto(userID, id int) (models.Gasto, error) {
	var g models.Gasto
	err := s.db.QueryRow(
		`SELECT id, user_id, categoria, cantidad, fecha FROM gastos WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&g.ID, &g.UserID, &g.Categoria, &g.Cantidad, &g.Fecha)
	return g, err
}
