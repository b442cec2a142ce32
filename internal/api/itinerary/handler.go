package itinerary

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-itinerary/internal/api"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/personalization"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

type HandlerImpl struct {
	service  Service
	profiles *personalization.Store
	logger   *slog.Logger
}

func NewHandlerImpl(service Service, profiles *personalization.Store, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:  service,
		profiles: profiles,
		logger:   logger,
	}
}

type buildItineraryRequest struct {
	Destination string   `json:"destination"`
	DayCount    int      `json:"day_count"`
	Preferences []string `json:"preferences,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Save        bool     `json:"save,omitempty"`
}

type buildItineraryResponse struct {
	Days        []types.DayPlan `json:"days"`
	ItineraryID *uuid.UUID      `json:"itinerary_id,omitempty"`
}

// BuildItinerary builds a full day-by-day schedule for the requested trip.
func (h *HandlerImpl) BuildItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "BuildItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildItinerary"))
	l.DebugContext(ctx, "Build itinerary handler invoked")

	var req buildItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	days, err := h.service.BuildItinerary(ctx, req.Destination, req.DayCount,
		types.NewPreferenceSet(req.Preferences...), h.sessionProfile(req.SessionID))
	if err != nil {
		h.writeBuildError(w, r, l, err)
		return
	}

	resp := buildItineraryResponse{Days: days}
	if req.Save {
		id, err := h.service.SaveItinerary(ctx, req.Destination, days)
		if err != nil {
			l.WarnContext(ctx, "Failed to save built itinerary", slog.Any("error", err))
		} else {
			resp.ItineraryID = &id
		}
	}

	l.InfoContext(ctx, "Itinerary built", slog.String("destination", req.Destination),
		slog.Int("day_count", req.DayCount))
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// BuildPackages builds the itinerary and returns its presentation variants.
func (h *HandlerImpl) BuildPackages(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "BuildPackages", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/packages"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "BuildPackages"))

	var req buildItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	packages, err := h.service.BuildPackages(ctx, req.Destination, req.DayCount,
		types.NewPreferenceSet(req.Preferences...), h.sessionProfile(req.SessionID))
	if err != nil {
		h.writeBuildError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"packages": packages})
}

// GetItinerary fetches a saved itinerary from the catalog.
func (h *HandlerImpl) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItinerary"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		l.ErrorContext(ctx, "Invalid itinerary ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	itinerary, err := h.service.GetItinerary(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, itinerary)
}

// GetItineraries lists saved itineraries, newest first.
func (h *HandlerImpl) GetItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItineraries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItineraries"))

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	resp, err := h.service.GetItineraries(ctx, page, pageSize)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// UpdateSessionPreferences merges inferred preference signal into the
// session's ephemeral personalization profile.
func (h *HandlerImpl) UpdateSessionPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "UpdateSessionPreferences", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/preferences"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateSessionPreferences"))

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Session ID is required")
		return
	}

	var delta types.SessionPersonalizationProfile
	if err := api.DecodeJSONBody(w, r, &delta); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	profile := h.profiles.Upsert(sessionID, &delta)
	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}

func (h *HandlerImpl) sessionProfile(sessionID string) *types.SessionPersonalizationProfile {
	if sessionID == "" || h.profiles == nil {
		return nil
	}
	profile, found := h.profiles.Get(sessionID)
	if !found {
		return nil
	}
	return profile
}

func (h *HandlerImpl) writeBuildError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	if errors.Is(err, ErrInvalidDayCount) || errors.Is(err, ErrMissingDestination) {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	l.ErrorContext(r.Context(), "Failed to build itinerary", slog.Any("error", err))
	api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build itinerary")
}
