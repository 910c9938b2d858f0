package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categoria wire values. These match the public API contract.
const (
	CategoriaComida          = "comida"
	CategoriaTransporte      = "transporte"
	CategoriaEntretenimiento = "entretenimiento"
	CategoriaOtros           = "otros"
)

// ValidCategoria reports whether c is one of the fixed category values.
func ValidCategoria(c string) bool {
	switch c {
	case CategoriaComida, CategoriaTransporte, CategoriaEntretenimiento, CategoriaOtros:
		return true
	}
	return false
}

// DateLayout is the calendar-date wire format for fecha fields.
const DateLayout = "2006-01-02"

// Date is a calendar date that marshals as a bare ISO date (no time part),
// and scans from the DATE column type.
type Date struct {
	time.Time
}

// Today returns the current calendar date.
func Today() Date {
	y, m, d := time.Now().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		t, err := time.Parse(DateLayout, string(v))
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case string:
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", value)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Format(DateLayout), nil
}

// Gasto is one expense record, always owned by exactly one Usuario.
type Gasto struct {
	ID        int             `json:"id" db:"id" example:"1"`
	UserID    int             `json:"-" db:"user_id"`
	Categoria string          `json:"categoria" db:"categoria" example:"comida"`
	Cantidad  decimal.Decimal `json:"cantidad" db:"cantidad" swaggertype:"string" example:"30.00"`
	Fecha     Date            `json:"fecha" db:"fecha" swaggertype:"string" example:"2025-01-31"`
}

// MarshalJSON fixes cantidad at two decimal places on the wire, whatever
// precision the amount was entered with.
func (g Gasto) MarshalJSON() ([]byte, error) {
	type gastoAlias Gasto
	return json.Marshal(struct {
		gastoAlias
		Cantidad string `json:"cantidad"`
	}{gastoAlias(g), g.Cantidad.StringFixed(2)})
}
