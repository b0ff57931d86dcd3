package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/plugin/ussd"
	"github.com/peswahq/ussd-simulator/server/service/simulator"
	"github.com/peswahq/ussd-simulator/store"
	"github.com/peswahq/ussd-simulator/store/db"
)

// newTestAPI wires a full API stack against the given fake endpoint handler.
func newTestAPI(t *testing.T, endpoint http.HandlerFunc) (*echo.Echo, *store.Store) {
	t.Helper()

	target := httptest.NewServer(endpoint)
	t.Cleanup(target.Close)

	p := &profile.Profile{Mode: "dev", DSN: ":memory:", EndpointURL: target.URL}
	require.NoError(t, p.Validate())

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)
	require.NoError(t, driver.Migrate(context.Background()))

	st := store.New(driver, p)
	t.Cleanup(func() { _ = st.Close() })

	client := ussd.NewClient(nil)
	sim := simulator.NewService(p, st, client, nil)

	e := echo.New()
	NewAPIV1Service(p, st, sim, nil).Register(e)
	return e, st
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func escapeQuery(s string) string {
	return url.QueryEscape(s)
}

func menuEndpoint(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request ussd.RootRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		reply := `{"USSDResp":{"action":"menu","menus":["Check Balance","Repay Loan"],"title":"Welcome"}}`
		if !ussd.IsDial(request.USSDReq.Msg) {
			reply = `{"USSDResp":{"action":"prompt","menus":"Enter amount","title":"Repay Loan"}}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}
}

func TestSendEndpoint_FullCycle(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*123#"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result simulator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Display)
	assert.Equal(t, ussd.DisplayMenu, result.Display.Kind)
	assert.Equal(t, []string{"Check Balance", "Repay Loan"}, result.Display.Items)
	require.NotNil(t, result.Session)
	assert.Equal(t, "Welcome", result.Session.CurrentScreen)

	// Continue with a selection; same session, prompt rendering.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/simulator/send",
		`{"sessionId":"`+result.Session.ID+`","input":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var second simulator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, result.Session.ID, second.Session.ID)
	assert.Equal(t, ussd.DisplayPrompt, second.Display.Kind)
	assert.Equal(t, "Enter amount", second.Display.Text)
	assert.Len(t, second.Session.ConversationHistory, 2)
}

func TestSendEndpoint_EndpointFailureIsRecorded(t *testing.T) {
	e, st := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	rec := doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*123#"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result simulator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")

	logs, err := st.ListRequestLogs(context.Background(), &store.FindRequestLog{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
}

func TestSessionEndpoints(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var created SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/sessions/"+created.ID+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/sessions/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/sessions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSession_RestoresLastDisplay(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*123#"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var result simulator.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	rec = doJSON(t, e, http.MethodGet, "/api/v1/sessions/"+result.Session.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.LastDisplay)
	assert.Equal(t, ussd.DisplayMenu, got.LastDisplay.Kind)
}

func TestConfigEndpoints(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var config ConfigResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &config))
	assert.Equal(t, ussd.Networks, config.Networks)

	rec = doJSON(t, e, http.MethodPatch, "/api/v1/config", `{"network":"Vodafone","phoneNumber":"0200000001"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &config))
	assert.Equal(t, "Vodafone", config.Network)
	assert.Equal(t, "0200000001", config.PhoneNumber)

	rec = doJSON(t, e, http.MethodPatch, "/api/v1/config", `{"network":"Orange"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing phone number turns session creation into a validation failure.
	rec = doJSON(t, e, http.MethodPatch, "/api/v1/config", `{"phoneNumber":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLogEndpoints(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*123#"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*456#"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []*RequestLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, "*456#", logs[0].Request.USSDReq.Msg)

	// CEL filter.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs?filter="+escapeQuery(`msg == "*123#"`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "*123#", logs[0].Request.USSDReq.Msg)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs?filter="+escapeQuery(`success == false`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.Empty(t, logs)

	// Broken filter is a client error.
	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs?filter="+escapeQuery(`success ==`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/logs", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	assert.Empty(t, logs)
}

func TestRequestLogFeed(t *testing.T) {
	e, _ := newTestAPI(t, menuEndpoint(t))

	rec := doJSON(t, e, http.MethodPost, "/api/v1/simulator/send", `{"input":"*123#"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/logs/feed.rss", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "rss")
	assert.Contains(t, rec.Body.String(), "USSD simulator activity")
	assert.Contains(t, rec.Body.String(), "*123#")
}
