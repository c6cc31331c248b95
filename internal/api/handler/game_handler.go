package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gameshelf/gameshelf/internal/api/metrics"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// GameHandler serves the JSON catalog API. Domain errors are returned as is
// and mapped to status codes by the HTTP error handler.
type GameHandler struct {
	service ports.GameService
}

func NewGameHandler(service ports.GameService) *GameHandler {
	return &GameHandler{service: service}
}

// List handles GET /api/games.
//
// @Summary      List games
// @Tags         games
// @Produce      json
// @Param        platform  query     string  false  "Platform name (case-insensitive)"
// @Param        year      query     int     false  "Release year"
// @Param        search    query     string  false  "Partial name match"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Success      200       {object}  listGamesResponse
// @Failure      400       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/games [get]
func (h *GameHandler) List(c echo.Context) error {
	var q listGamesQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListGames(c.Request().Context(), toListGamesInput(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListGamesResponse(result))
}

// Get handles GET /api/games/:id.
//
// @Summary      Get a game
// @Tags         games
// @Produce      json
// @Param        id   path      string  true  "Game ID"
// @Success      200  {object}  gameResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/games/{id} [get]
func (h *GameHandler) Get(c echo.Context) error {
	detail, err := h.service.GetGame(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGameResponse(detail))
}

// Create handles POST /api/games.
//
// @Summary      Create a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        body  body      createGameRequest  true  "Game details"
// @Success      201   {object}  gameResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/games [post]
func (h *GameHandler) Create(c echo.Context) error {
	var req createGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	detail, err := h.service.CreateGame(c.Request().Context(), toGameInput(req))
	if err != nil {
		return err
	}
	metrics.GamesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toGameResponse(detail))
}

// Update handles PUT /api/games/:id.
//
// @Summary      Update a game
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Game ID"
// @Param        body  body      updateGameRequest  true  "Fields to change"
// @Success      200   {object}  gameResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/games/{id} [put]
func (h *GameHandler) Update(c echo.Context) error {
	var req updateGameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	detail, err := h.service.UpdateGame(c.Request().Context(), c.Param("id"), toUpdateGameInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGameResponse(detail))
}

// Delete handles DELETE /api/games/:id.
//
// @Summary      Delete a game
// @Tags         games
// @Param        id   path  string  true  "Game ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/games/{id} [delete]
func (h *GameHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteGame(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
