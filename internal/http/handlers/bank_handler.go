package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vamgard/vamgard-backend/internal/http/middleware"
	"github.com/vamgard/vamgard-backend/internal/services"
)

// NearbyResponse lists the branches found around the requested point.
type NearbyResponse struct {
	Success  bool              `json:"success" example:"true"`
	Branches []services.Branch `json:"branches"`
	Count    int               `json:"count"`
}

// ListBanks godoc
// @ID          listBanks
// @Summary     Banks page
// @Description Active banks in display order with their active loans.
// @Tags        Banks
// @Produce     json
// @Success     200  {array}   domain.Bank
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /Banks [get]
func (h *Handlers) ListBanks(c *gin.Context) {
	banks, err := h.svc.Banks.List(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, banks)
}

// BankDetail godoc
// @ID          bankDetail
// @Summary     Bank page
// @Tags        Banks
// @Produce     json
// @Param       slug  path  string  true  "Bank slug"  example(bank-melli)
// @Success     200  {object}  services.BankPage
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /bank/{slug} [get]
func (h *Handlers) BankDetail(c *gin.Context) {
	p, err := h.svc.Banks.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrBankNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
			return
		}
		internalError(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

// NearbyBranches godoc
// @ID          nearbyBranches
// @Summary     Nearby bank branches
// @Description Looks up the bank's branches on OpenStreetMap around lat/lng.
// @Tags        Banks
// @Produce     json
// @Param       slug  path   string  true  "Bank slug"  example(bank-melli)
// @Param       lat   query  number  true  "Latitude"   example(35.6892)
// @Param       lng   query  number  true  "Longitude"  example(51.3890)
// @Success     200  {object}  handlers.NearbyResponse
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     429  {object}  handlers.ErrorResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Map server error"
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /api/banks/{slug}/nearby [get]
func (h *Handlers) NearbyBranches(c *gin.Context) {
	lat, okLat := parseCoord(c.Query("lat"))
	lng, okLng := parseCoord(c.Query("lng"))
	if !okLat || !okLng {
		fail(c, http.StatusBadRequest, ErrCodeInvalidCoordinates, msgInvalidCoordinates)
		return
	}

	branches, err := h.svc.Branches.Nearby(c.Request.Context(), c.Param("slug"), lat, lng)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCoordinates):
		fail(c, http.StatusBadRequest, ErrCodeInvalidCoordinates, msgInvalidCoordinates)
		return
	case errors.Is(err, services.ErrBankNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, msgNotFound)
		return
	case errors.Is(err, services.ErrBranchUpstream):
		middleware.LoggerFrom(c).Warn().Err(err).Msg("overpass upstream error")
		fail(c, http.StatusBadGateway, ErrCodeUpstream, msgMapUpstream)
		return
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeLookupFailed, msgBranchLookup)
		return
	}
	if branches == nil {
		branches = []services.Branch{}
	}
	ok(c, http.StatusOK, NearbyResponse{Success: true, Branches: branches, Count: len(branches)})
}
