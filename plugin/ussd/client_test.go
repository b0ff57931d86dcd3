package ussd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Send_Success(t *testing.T) {
	var received RootRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"USSDResp":{"action":"menu","menus":["Check Balance","Repay Loan"],"title":"Welcome","key":"0) Back"}}`))
	}))
	defer server.Close()

	client := NewClient(nil)
	result := client.Send(context.Background(), server.URL, &RootRequest{
		USSDReq: Request{
			Msisdn:        "0546628393",
			Msg:           "*123#",
			Network:       NetworkMTN,
			UserSessionID: "abc123",
		},
	})

	require.True(t, result.OK())
	assert.Empty(t, result.Err)
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))

	assert.Equal(t, "0546628393", received.USSDReq.Msisdn)
	assert.Equal(t, "*123#", received.USSDReq.Msg)
	assert.Equal(t, "abc123", received.USSDReq.UserSessionID)

	resp := result.Response.USSDResp
	assert.Equal(t, "menu", resp.Action)
	assert.Equal(t, []string{"Check Balance", "Repay Loan"}, resp.Menus.Items)
	assert.Equal(t, "Welcome", resp.Title)
	assert.Equal(t, "0) Back", resp.Key)
}

func TestClient_Send_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil)
	result := client.Send(context.Background(), server.URL, &RootRequest{})

	assert.False(t, result.OK())
	assert.Equal(t, ErrKindRemote, result.ErrKind)
	assert.Contains(t, result.Err, "500")
	assert.Contains(t, result.Err, "internal failure")
}

func TestClient_Send_ConnectivityError(t *testing.T) {
	// Grab a port that nothing is listening on.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil)
	result := client.Send(context.Background(), url, &RootRequest{})

	assert.False(t, result.OK())
	assert.Equal(t, ErrKindConnectivity, result.ErrKind)
	assert.Contains(t, result.Err, "no response from endpoint")
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{Timeout: 20 * time.Millisecond})
	result := client.Send(context.Background(), server.URL, &RootRequest{})

	assert.False(t, result.OK())
	assert.NotEmpty(t, result.Err)
	assert.GreaterOrEqual(t, result.Duration, 20*time.Millisecond)
}

func TestClient_Send_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := NewClient(nil)
	result := client.Send(context.Background(), server.URL, &RootRequest{})

	assert.False(t, result.OK())
	assert.Equal(t, ErrKindMalformed, result.ErrKind)
	assert.Contains(t, result.Err, "failed to decode response body")
}
