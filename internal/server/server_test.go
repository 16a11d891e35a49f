package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagent-dev/openagent/internal/event"
	"github.com/openagent-dev/openagent/internal/permission"
	"github.com/openagent-dev/openagent/internal/tool"
)

func newTestServer(t *testing.T) (*Server, *permission.Channel) {
	t.Helper()
	event.Reset()

	perms := permission.NewChannel(permission.DefaultOptions())
	registry := tool.NewRegistry()
	tool.RegisterBuiltins(registry)
	return New(DefaultConfig(), perms, registry), perms
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestListToolNames(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tools", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Contains(t, names, "run_command")
}

func TestPermissionsEmptyList(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestPermissionRoundTrip(t *testing.T) {
	s, perms := newTestServer(t)

	done := make(chan permission.Decision, 1)
	go func() {
		d, _ := perms.Ask(context.Background(), permission.Request{
			Operation: permission.OpRunCommand,
			Details:   map[string]any{"command": "make test"},
		})
		done <- d
	}()

	// Wait for the request to land in the queue.
	var pending []permission.PendingRequest
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions", nil))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
		return len(pending) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, permission.OpRunCommand, pending[0].Request.Operation)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/permissions/"+pending[0].ID, strings.NewReader(`{"granted":true}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	select {
	case d := <-done:
		assert.Equal(t, permission.Granted, d)
	case <-time.After(time.Second):
		t.Fatal("decision never reached the asker")
	}
}

func TestRespondUnknownID(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/permissions/nope", strings.NewReader(`{"granted":true}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
