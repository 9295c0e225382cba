package handler

import (
	"net/http"
	"strconv"

	"github.com/123Jonas/aluguel-imoveis-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Price uint   `json:"price"`
}

// Get returns the short descriptor clients label conversations with.
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	listing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		status, code := errorStatus(err)
		return c.JSON(status, NewErrorResponse(code, "listing not found"))
	}
	return c.JSON(http.StatusOK, ListingResponse{ID: listing.ID, Title: listing.Title, Price: listing.Price})
}
