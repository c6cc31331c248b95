package handler

import (
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// --- Request → Service input ---

func toGameInput(req createGameRequest) ports.GameInput {
	return ports.GameInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Platforms:   req.Platforms,
	}
}

func toUpdateGameInput(req updateGameRequest) ports.UpdateGameInput {
	return ports.UpdateGameInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Platforms:   req.Platforms,
	}
}

func toListGamesInput(q listGamesQuery) ports.ListGamesInput {
	return ports.ListGamesInput{
		Platform: q.Platform,
		Year:     q.Year,
		Search:   q.Search,
		Page:     q.Page,
		Limit:    q.Limit,
	}
}

// --- Service output → Response ---

func toGameResponse(d *ports.GameDetail) gameResponse {
	platforms := d.Platforms
	if platforms == nil {
		platforms = []string{}
	}
	return gameResponse{
		ID:          d.ID,
		Name:        d.Name,
		Year:        d.Year,
		Description: d.Description,
		Platforms:   platforms,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Links:       gameLinks{Self: "/api/games/" + d.ID},
	}
}

func toListGamesResponse(r *ports.ListGamesResult) listGamesResponse {
	items := make([]gameResponse, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, toGameResponse(&r.Items[i]))
	}
	return listGamesResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}
