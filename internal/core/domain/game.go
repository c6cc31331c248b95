package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game with this name already exists")
	ErrInvalidGame  = errors.New("invalid game")
)

const (
	MinGameNameLength = 5
	MinGameYear       = 1990
	MaxGameYear       = 2100
)

// Game is a catalog entry. Platforms are stored by name.
type Game struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Year        int       `json:"year" bson:"year"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Platforms   []string  `json:"platforms" bson:"platforms"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// NormalizePlatforms trims names, drops empties and removes case-insensitive duplicates
// while keeping the first spelling seen.
func NormalizePlatforms(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// YearInRange reports whether year is an accepted release year.
func YearInRange(year int) bool {
	return year >= MinGameYear && year <= MaxGameYear
}
