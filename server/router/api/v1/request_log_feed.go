package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/peswahq/ussd-simulator/store"
)

// feedLimit caps the number of items in the activity feed.
const feedLimit = 50

// RequestLogFeed serves recent attempts as an RSS feed, so a browser tab or
// feed reader can monitor endpoint activity while a test run is going.
func (s *APIV1Service) RequestLogFeed(c echo.Context) error {
	limit := feedLimit
	logs, err := s.Store.ListRequestLogs(c.Request().Context(), &store.FindRequestLog{Limit: &limit})
	if err != nil {
		return toHTTPError(err)
	}

	baseURL := c.Scheme() + "://" + c.Request().Host
	feed := &feeds.Feed{
		Title:       "USSD simulator activity",
		Link:        &feeds.Link{Href: baseURL + "/api/v1/logs"},
		Description: "Recent request/response attempts against the configured USSD endpoint",
		Created:     time.Now(),
	}

	for _, entry := range logs {
		status := "OK"
		description := fmt.Sprintf("msg=%q network=%s duration=%dms", entry.Request.USSDReq.Msg, entry.Request.USSDReq.Network, entry.Duration)
		if !entry.Success {
			status = "FAILED"
			description += " error=" + entry.Error
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          entry.ID,
			Title:       fmt.Sprintf("%s %s -> %s", entry.Request.USSDReq.Msisdn, entry.Request.USSDReq.Msg, status),
			Link:        &feeds.Link{Href: baseURL + "/api/v1/logs?session_id=" + entry.SessionID},
			Description: description,
			Created:     entry.Timestamp,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return toHTTPError(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
