package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"

	h "techconnect/internal/delivery/http/helpers"
	"techconnect/internal/domain"
)

type FeedController struct {
	Logger  *slog.Logger
	Service domain.EventService
	BaseURL string
}

func NewFeedController(logger *slog.Logger, svc domain.EventService, baseURL string) *FeedController {
	return &FeedController{
		Logger:  logger,
		Service: svc,
		BaseURL: baseURL,
	}
}

// RSS godoc
// @Summary Upcoming events as RSS
// @Description RSS 2.0 feed of upcoming events, soonest first, capped at 50 items.
// @Tags feed
// @Produce application/rss+xml
// @Success 200 {string} string "RSS document"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /feed [get]
func (c *FeedController) RSS(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListUpcomingEvents(r.Context(), 0)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not build feed")
		return
	}

	feed := &feeds.Feed{
		Title:       "TechConnect upcoming events",
		Link:        &feeds.Link{Href: c.BaseURL + "/events"},
		Description: "Meetups, hackathons, and talks across the regional tech community.",
		Created:     time.Now(),
	}
	for _, event := range events {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          event.ID,
			Title:       event.Title,
			Link:        &feeds.Link{Href: c.BaseURL + "/events/" + event.ID},
			Description: event.Description,
			Created:     event.Date,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "could not build feed")
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}
