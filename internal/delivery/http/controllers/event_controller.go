package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "techconnect/internal/delivery/http/helpers"
	"techconnect/internal/delivery/http/middleware"
	"techconnect/internal/domain"
)

// CreateEventRequest is the request body for POST /events
type CreateEventRequest struct {
	Title       string `json:"title"`
	College     string `json:"college"`
	Description string `json:"description"`
	Date        string `json:"date"` // RFC 3339
	Location    string `json:"location"`
	Type        string `json:"type"`
	Capacity    *int   `json:"capacity"`
	Image       string `json:"image"`
}

// Validate implements Validator.
func (req CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if req.Date == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(time.RFC3339, req.Date); err != nil {
		errs = append(errs, "date must be RFC 3339")
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	College     *string `json:"college"`
	Description *string `json:"description"`
	Date        *string `json:"date"` // RFC 3339
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	Capacity    *int    `json:"capacity"`
	Image       *string `json:"image"`
}

// Validate implements Validator.
func (req UpdateEventRequest) Validate() []string {
	var errs []string
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if req.Date != nil {
		if _, err := time.Parse(time.RFC3339, *req.Date); err != nil {
			errs = append(errs, "date must be RFC 3339")
		}
	}
	if req.Capacity != nil && *req.Capacity < 1 {
		errs = append(errs, "capacity must be at least 1")
	}
	return errs
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create an event
// @Description Create a new event. Organizers and admins only. A URL slug is generated from the title. Everyone connected to the live feed is notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	date, _ := time.Parse(time.RFC3339, req.Date)

	event := &domain.Event{
		Title:       strings.TrimSpace(req.Title),
		College:     strings.TrimSpace(req.College),
		Description: req.Description,
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		Type:        strings.TrimSpace(req.Type),
		Capacity:    req.Capacity,
		Image:       req.Image,
	}
	if err := c.Service.CreateEvent(r.Context(), userID, role, event); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only organizers can create events")
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not create event")
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, event)
}

// List godoc
// @Summary List events
// @Description List events, optionally filtered by free-text query, type, and date range. Sorted by date ascending.
// @Tags events
// @Produce json
// @Param q query string false "Free-text search over title, description, and college"
// @Param type query string false "Event type"
// @Param date_from query string false "Earliest date (RFC 3339)"
// @Param date_to query string false "Latest date (RFC 3339)"
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Type:  strings.TrimSpace(q.Get("type")),
	}
	if s := q.Get("date_from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "date_from must be RFC 3339")
			return
		}
		filter.DateFrom = &t
	}
	if s := q.Get("date_to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "date_to must be RFC 3339")
			return
		}
		filter.DateTo = &t
	}

	events, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not list events")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventByID(r.Context(), r.PathValue("eventID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not load event")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Update godoc
// @Summary Update an event
// @Description Partially update an event. Only the creator or an admin may update. Subscribers of the event's channel are notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	patch := domain.EventPatch{
		Title:       req.Title,
		College:     req.College,
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		Capacity:    req.Capacity,
		Image:       req.Image,
	}
	if req.Date != nil {
		t, _ := time.Parse(time.RFC3339, *req.Date)
		patch.Date = &t
	}

	event, err := c.Service.UpdateEvent(r.Context(), userID, role, r.PathValue("eventID"), patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only the creator or an admin can update this event")
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not update event")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Delete an event. Only the creator or an admin may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the deleted event ID"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())
	eventID := r.PathValue("eventID")

	if err := c.Service.DeleteEvent(r.Context(), userID, role, eventID); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "only the creator or an admin can delete this event")
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not delete event")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": eventID})
}

// ExportICS godoc
// @Summary Export an event as iCalendar
// @Description Download a .ics file for the event, importable into any calendar app.
// @Tags events
// @Produce text/calendar
// @Param eventID path string true "Event ID"
// @Success 200 {string} string "iCalendar document"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/ics [get]
func (c *EventController) ExportICS(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventByID(r.Context(), r.PathValue("eventID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not load event")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+event.Slug+`.ics"`)
	_, _ = w.Write([]byte(buildICS(event)))
}
