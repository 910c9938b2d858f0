package models

import "github.com/shopspring/decimal"

// Usuario is an account, keyed by its unique correo (email) address.
// There are no passwords; identity is proven by OTP verification.
type Usuario struct {
	ID          int             `json:"id" example:"1"`                                    // User ID
	Nombre      string          `json:"nombre" example:"Ana"`                              // Display name
	Correo      string          `json:"correo" example:"ana@example.com"`                  // Email, unique identity
	Presupuesto decimal.Decimal `json:"presupuesto" swaggertype:"string" example:"100.00"` // Monthly budget, never negative
}
