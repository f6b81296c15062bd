package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents user role (matches user_role enum)
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// GeoPoint is a WGS84 coordinate pair
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether the point carries usable coordinates
func (p GeoPoint) Valid() bool {
	return p.Longitude >= -180 && p.Longitude <= 180 &&
		p.Latitude >= -90 && p.Latitude <= 90 &&
		!(p.Longitude == 0 && p.Latitude == 0)
}

// Actor is the resolved caller identity every workflow operation receives.
// Passed explicitly as an argument, never read from ambient state.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// User represents an account with a credit ledger balance
type User struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Email         string          `db:"email" json:"email"`
	Phone         sql.NullString  `db:"phone" json:"phone,omitempty"`
	Address       sql.NullString  `db:"address" json:"address,omitempty"`
	Role          Role            `db:"role" json:"role"`
	CreditBalance decimal.Decimal `db:"credit_balance" json:"credit_balance"`
	Longitude     sql.NullFloat64 `db:"longitude" json:"-"`
	Latitude      sql.NullFloat64 `db:"latitude" json:"-"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Location returns the stored location, or nil if the profile has none
func (u *User) Location() *GeoPoint {
	if !u.Longitude.Valid || !u.Latitude.Valid {
		return nil
	}
	p := GeoPoint{Longitude: u.Longitude.Float64, Latitude: u.Latitude.Float64}
	if !p.Valid() {
		return nil
	}
	return &p
}
