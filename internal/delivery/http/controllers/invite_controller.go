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

// IssueInvitesRequest is the request body for POST /invites
type IssueInvitesRequest struct {
	Role   string   `json:"role"`
	Count  int      `json:"count"`
	Emails []string `json:"emails"`
}

// Validate implements Validator.
func (req IssueInvitesRequest) Validate() []string {
	var errs []string
	if req.Count < 0 {
		errs = append(errs, "count must be positive")
	}
	for _, e := range req.Emails {
		if e != "" && !emailRegexp.MatchString(strings.TrimSpace(strings.ToLower(e))) {
			errs = append(errs, "invalid recipient email: "+e)
		}
	}
	return errs
}

// IssueInvitesResponse is the response body for POST /invites
type IssueInvitesResponse struct {
	Invites      []*domain.InviteCode `json:"invites"`
	FailedEmails []string             `json:"failed_emails,omitempty"`
}

// SetRevokedRequest is the request body for PUT /invites/{inviteID}
type SetRevokedRequest struct {
	Revoked *bool `json:"revoked"`
}

// Validate implements Validator.
func (req SetRevokedRequest) Validate() []string {
	if req.Revoked == nil {
		return []string{"revoked is required"}
	}
	return nil
}

// InviteListResponse is the response body for GET /invites
type InviteListResponse struct {
	Invites    []*domain.InviteCode `json:"invites"`
	Pagination h.PaginationMeta     `json:"pagination"`
}

type InviteController struct {
	Logger  *slog.Logger
	Service domain.InviteService
}

func NewInviteController(logger *slog.Logger, svc domain.InviteService) *InviteController {
	return &InviteController{
		Logger:  logger,
		Service: svc,
	}
}

// Issue godoc
// @Summary Issue invite codes
// @Description Mint single-use invite codes granting the given role. Organizers and admins only; the granted role is capped at the caller's own role. Count is clamped to 1..20. If emails are provided, each code is mailed to the matching recipient.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IssueInvitesRequest true "Issue parameters"
// @Success 201 {object} helpers.APIResponse "data contains the created invites and any failed emails"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites [post]
func (c *InviteController) Issue(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	var req IssueInvitesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	invites, err := c.Service.Issue(r.Context(), userID, role, req.Role, req.Count)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "not allowed to issue invites for that role")
		case errors.Is(err, domain.ErrInvalidRole):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "unknown role")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not issue invites")
		}
		return
	}

	resp := IssueInvitesResponse{Invites: invites}
	if len(req.Emails) > 0 {
		resp.FailedEmails = c.Service.SendCodes(r.Context(), invites, req.Emails)
	}
	h.WriteJSONSuccess(w, http.StatusCreated, resp)
}

// List godoc
// @Summary List invite codes
// @Description List all invite codes, newest first. Organizers and admins only.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains invites and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites [get]
func (c *InviteController) List(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())
	params := h.ParsePagination(r)

	invites, total, err := c.Service.List(r.Context(), role, params)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "not allowed to list invites")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not list invites")
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, InviteListResponse{
		Invites:    invites,
		Pagination: h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// SetRevoked godoc
// @Summary Revoke or reinstate an invite code
// @Description Set the revoked flag on an invite code. Reinstating a code that was already used does not make it redeemable again.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param inviteID path string true "Invite ID"
// @Param body body SetRevokedRequest true "Revocation flag"
// @Success 200 {object} helpers.APIResponse "data contains the updated invite"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites/{inviteID} [put]
func (c *InviteController) SetRevoked(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())
	inviteID := r.PathValue("inviteID")

	var req SetRevokedRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	invite, err := c.Service.SetRevoked(r.Context(), role, inviteID, *req.Revoked)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "not allowed to manage invites")
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "invite not found")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not update invite")
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, invite)
}
