/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures the HTTP host exchanges with its UI. Ledger
  entities (parties, entries, items, transactions) already carry their wire
  tags and are returned as-is; the types here cover session, errors and
  endpoint-specific envelopes.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/action.go: the dispatch wire format
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/daybook/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// LoginRequest is the body of POST /api/session/login.
type LoginRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	PhotoURL       string `json:"photoUrl,omitempty"`
	BusinessName   string `json:"businessName,omitempty"`
	Phone          string `json:"phone,omitempty"`
	AlternatePhone string `json:"alternatePhone,omitempty"`
	Address        string `json:"address,omitempty"`
	CNIC           string `json:"cnic,omitempty"`
}

func (r LoginRequest) toUser() ledger.User {
	return ledger.User{
		Name:           r.Name,
		Email:          r.Email,
		PhotoURL:       r.PhotoURL,
		BusinessName:   r.BusinessName,
		Phone:          r.Phone,
		AlternatePhone: r.AlternatePhone,
		Address:        r.Address,
		CNIC:           r.CNIC,
	}
}

// SessionDTO describes who is logged in.
type SessionDTO struct {
	LoggedIn      bool         `json:"loggedIn"`
	User          *ledger.User `json:"user,omitempty"`
	Screen        string       `json:"currentScreen,omitempty"`
	Notifications int          `json:"unreadNotifications"`
}

// AuditDTO is the result of checking every party balance against the day
// book.
type AuditDTO struct {
	OK            bool                 `json:"ok"`
	Parties       int                  `json:"parties"`
	Discrepancies []ledger.Discrepancy `json:"discrepancies"`
}

// RescanDTO reports how many notifications a rescan raised.
type RescanDTO struct {
	Added int `json:"added"`
}

// StockErrorDTO carries the details of a stock shortage.
type StockErrorDTO struct {
	ItemID      string          `json:"itemId"`
	BatchNumber string          `json:"batchNumber,omitempty"`
	Required    decimal.Decimal `json:"required"`
	Available   decimal.Decimal `json:"available"`
	Fragmented  bool            `json:"fragmented"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSessionDTO(loggedIn bool, state ledger.State) SessionDTO {
	dto := SessionDTO{LoggedIn: loggedIn}
	if !loggedIn {
		return dto
	}
	dto.User = state.User
	dto.Screen = string(state.Screen)
	for _, n := range state.Notifications {
		if !n.IsRead {
			dto.Notifications++
		}
	}
	return dto
}

func toStockErrorDTO(e *ledger.InsufficientStockError) StockErrorDTO {
	return StockErrorDTO{
		ItemID:      e.ItemID,
		BatchNumber: e.BatchNumber,
		Required:    e.Required,
		Available:   e.Available,
		Fragmented:  e.Fragmented,
	}
}
