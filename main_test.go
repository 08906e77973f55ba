package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/operations"
)

// newTestServer wires the REST surface against a backend that knows no
// products, so started installs fail fast at build listing.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(backend.Close)

	api := gogapi.NewClient("")
	api.ContentSystemURL = backend.URL
	api.CdnURL = backend.URL
	api.EmbedURL = backend.URL
	api.APIURL = backend.URL

	s := &server{api: api, registry: operations.NewRegistry()}
	srv := httptest.NewServer(s.routes())
	t.Cleanup(srv.Close)
	return srv
}

func postInstall(t *testing.T, srv *httptest.Server, req models.InstallRequest) (*http.Response, models.TaskResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/install", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var taskResp models.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&taskResp))
	return resp, taskResp
}

func waitForTask(t *testing.T, srv *httptest.Server, taskID string) models.TaskStatus {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.URL + "/api/tasks/" + taskID)
		require.NoError(t, err)

		var status models.TaskStatus
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		resp.Body.Close()

		if status.Status != "running" {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task never finished")
	return models.TaskStatus{}
}

func TestInstallEndpointValidatesRequest(t *testing.T) {
	srv := newTestServer(t)

	resp, taskResp := postInstall(t, srv, models.InstallRequest{ProductID: "1001"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", taskResp.Status)

	resp, _ = postInstall(t, srv, models.InstallRequest{InstallPath: "/tmp/x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInstallTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, taskResp := postInstall(t, srv, models.InstallRequest{
		ProductID:   "1001",
		InstallPath: t.TempDir(),
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotEmpty(t, taskResp.TaskID)

	status := waitForTask(t, srv, taskResp.TaskID)
	assert.Equal(t, "failed", status.Status)
	require.NotNil(t, status.Error)

	listResp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list []models.TaskStatus
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, taskResp.TaskID, list[0].TaskID)
}

func TestTaskStatusUnknownTask(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/tasks/no-such-task")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskCancelNotRunning(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/tasks/no-such-task/cancel", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUserGamesProxiesBackendFailure(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/user/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestWebsocketStreamsUntilTaskEnds(t *testing.T) {
	srv := newTestServer(t)

	_, taskResp := postInstall(t, srv, models.InstallRequest{
		ProductID:   "1001",
		InstallPath: t.TempDir(),
	})
	require.NotEmpty(t, taskResp.TaskID)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tasks/" + taskResp.TaskID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var status models.TaskStatus
		require.NoError(t, conn.ReadJSON(&status))
		assert.Equal(t, taskResp.TaskID, status.TaskID)
		if status.Status != "running" {
			assert.Equal(t, "failed", status.Status)
			break
		}
	}
}
