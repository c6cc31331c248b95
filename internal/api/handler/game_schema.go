package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createGameRequest struct {
	Name        string   `json:"name"        validate:"required,min=5,max=100"`
	Year        int      `json:"year"        validate:"required,min=1990,max=2100"`
	Description string   `json:"description" validate:"max=1500"`
	Platforms   []string `json:"platforms"   validate:"required,min=1,max=10,dive,required,max=100"`
}

// updateGameRequest uses pointers so absent fields stay unchanged.
type updateGameRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=5,max=100"`
	Year        *int     `json:"year"        validate:"omitempty,min=1990,max=2100"`
	Description *string  `json:"description" validate:"omitempty,max=1500"`
	Platforms   []string `json:"platforms"   validate:"omitempty,min=1,max=10,dive,required,max=100"`
}

type listGamesQuery struct {
	Platform string `query:"platform"`
	Year     int    `query:"year"   validate:"omitempty,min=1990,max=2100"`
	Search   string `query:"search" validate:"max=100"`
	Page     int    `query:"page"   validate:"omitempty,min=1"`
	Limit    int    `query:"limit"  validate:"omitempty,min=1,max=100"`
}

// Response-only types owned by the transport layer, kept apart from
// ports/domain types so the JSON contract does not follow internal changes.

type gameLinks struct {
	Self string `json:"self"`
}

type gameResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description,omitempty"`
	Platforms   []string  `json:"platforms"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Links       gameLinks `json:"_links"`
}

type listGamesResponse struct {
	Items      []gameResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
