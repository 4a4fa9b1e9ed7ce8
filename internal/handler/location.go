package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/pairbond/pairbond-server/internal/errors"
	"github.com/pairbond/pairbond-server/internal/middleware"
	"github.com/pairbond/pairbond-server/internal/model"
	"github.com/pairbond/pairbond-server/internal/service"
)

type LocationHandler struct {
	locationService *service.LocationService
}

func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

type updateLocationRequest struct {
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	BatteryLevel    *int     `json:"batteryLevel,omitempty"`
	SharingDuration string   `json:"sharingDuration"`
}

// PUT /v1/location
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var req updateLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Latitude == nil {
		writeError(w, apperrors.MissingRequired("latitude"))
		return
	}
	if req.Longitude == nil {
		writeError(w, apperrors.MissingRequired("longitude"))
		return
	}
	if req.SharingDuration == "" {
		writeError(w, apperrors.MissingRequired("sharingDuration"))
		return
	}

	loc, err := h.locationService.Update(r.Context(), service.UpdateLocationParams{
		PairCode:        session.PairCode,
		UserName:        session.UserName,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		BatteryLevel:    req.BatteryLevel,
		SharingDuration: model.SharingDuration(req.SharingDuration),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"location": loc,
		"message":  "Location updated!",
	})
}

// GET /v1/locations
func (h *LocationHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	result, err := h.locationService.List(r.Context(), session.PairCode)
	if err != nil {
		log.Error().Err(err).Msg("failed to list locations")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
