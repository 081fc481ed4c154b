package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "techconnect/internal/delivery/http/helpers"
	"techconnect/internal/delivery/http/middleware"
	"techconnect/internal/domain"
)

// RegisterRequest is the request body for POST /events/{eventID}/register
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (req RegisterRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// CommentRequest is the request body for POST /events/{eventID}/comments
type CommentRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Validate implements Validator.
func (req CommentRequest) Validate() []string {
	if strings.TrimSpace(req.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary RSVP to an event
// @Description Register as an attendee. No account needed; name and email suffice. Fails when the event is at capacity.
// @Tags registration
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body RegisterRequest true "Attendee data"
// @Success 201 {object} helpers.APIResponse "data contains the attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	attendee, err := c.Service.Register(r.Context(), r.PathValue("eventID"), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrEventFull):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "event is full")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not register")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, attendee)
}

// AddComment godoc
// @Summary Comment on an event
// @Description Post a comment. Works for guests and signed-in users; guests without a name appear as "Guest". Subscribers of the event's channel are notified.
// @Tags registration
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body CommentRequest true "Comment data"
// @Success 201 {object} helpers.APIResponse "data contains the comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [post]
func (c *RegistrationController) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	var userID *string
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	comment, err := c.Service.AddComment(r.Context(), r.PathValue("eventID"), userID, req.Name, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not post comment")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary List comments on an event
// @Tags registration
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the comments, newest first"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/comments [get]
func (c *RegistrationController) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := c.Service.ListComments(r.Context(), r.PathValue("eventID"))
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not list comments")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, comments)
}
