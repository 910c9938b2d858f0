package services

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cashtrack/backend/internal/models"
)

// DashboardService is the read side: it recomputes the spend summary from
// the current ledger state on every call, with exact decimal arithmetic.
// Floats appear only in the response encoding.
type DashboardService struct {
	db *sql.DB
}

// CategoriaResumen is one category's slice of the total
// @Description Per-category sum and share of total spend
type CategoriaResumen struct {
	Valor      float64 `json:"valor" example:"30"`       // Summed amount
	Porcentaje float64 `json:"porcentaje" example:"60"`  // Share of total, 2 decimals
}

// DashboardResponse is the composite read model
// @Description Dashboard summary structure
type DashboardResponse struct {
	Total       float64                     `json:"total" example:"50"`
	Categorias  map[string]CategoriaResumen `json:"categorias"`
	Gastos      []models.Gasto              `json:"gastos"`
	Presupuesto float64                     `json:"presupuesto" example:"100"`
	Progreso    float64                     `json:"progreso" example:"50"` // Budget spent, 2 decimals
}

func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{db: db}
}

// GetDashboard returns the caller's spend summary
// @Summary Dashboard
// @Description Total spend, per-category breakdown, budget progress and the raw expense list
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /dashboard [get]
func (s *DashboardService) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var usuario models.Usuario
	err := s.db.QueryRowContext(r.Context(),
		`SELECT id, nombre, correo, presupuesto FROM usuarios WHERE id = $1`, userID).
		Scan(&usuario.ID, &usuario.Nombre, &usuario.Correo, &usuario.Presupuesto)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, "Usuario no encontrado", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[DASHBOARD] User lookup failed for %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch user", http.StatusInternalServerError, nil)
		return
	}

	rows, err := s.db.QueryContext(r.Context(),
		`SELECT id, user_id, categoria, cantidad, fecha FROM gastos WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		log.Printf("[DASHBOARD] Expense scan failed for %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch expenses", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	gastos := make([]models.Gasto, 0)
	for rows.Next() {
		var g models.Gasto
		if err := rows.Scan(&g.ID, &g.UserID, &g.Categoria, &g.Cantidad, &g.Fecha); err != nil {
			log.Printf("[DASHBOARD] Expense scan failed for %d: %v", userID, err)
			SendErrorResponse(w, "Failed to fetch expenses", http.StatusInternalServerError, nil)
			return
		}
		gastos = append(gastos, g)
	}
	if err := rows.Err(); err != nil {
		log.Printf("[DASHBOARD] Expense scan failed for %d: %v", userID, err)
		SendErrorResponse(w, "Failed to fetch expenses", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, BuildResumen(gastos, usuario.Presupuesto))
}

// Aggregate sums expenses with exact decimal arithmetic. The per-category
// sums always add up to the returned total.
func Aggregate(gastos []models.Gasto) (total decimal.Decimal, porCategoria map[string]decimal.Decimal) {
	porCategoria = make(map[string]decimal.Decimal)
	for _, g := range gastos {
		total = total.Add(g.Cantidad)
		porCategoria[g.Categoria] = porCategoria[g.Categoria].Add(g.Cantidad)
	}
	return total, porCategoria
}

// BuildResumen computes the dashboard read model. Percentages are rounded to
// two decimals and defined as exactly 0 when their denominator is zero.
func BuildResumen(gastos []models.Gasto, presupuesto decimal.Decimal) DashboardResponse {
	total, porCategoria := Aggregate(gastos)
	cien := decimal.NewFromInt(100)

	categorias := make(map[string]CategoriaResumen, len(porCategoria))
	for cat, val := range porCategoria {
		porcentaje := decimal.Zero
		if !total.IsZero() {
			porcentaje = val.Div(total).Mul(cien).Round(2)
		}
		categorias[cat] = CategoriaResumen{
			Valor:      val.InexactFloat64(),
			Porcentaje: porcentaje.InexactFloat64(),
		}
	}

	progreso := decimal.Zero
	if !presupuesto.IsZero() {
		progreso = total.Div(presupuesto).Mul(cien).Round(2)
	}

	return DashboardResponse{
		Total:       total.InexactFloat64(),
		Categorias:  categorias,
		Gastos:      gastos,
		Presupuesto: presupuesto.InexactFloat64(),
		Progreso:    progreso.InexactFloat64(),
	}
}
