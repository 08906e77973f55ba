package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"GalaxyClientv2/internal/config"
	"GalaxyClientv2/internal/logging"
	"GalaxyClientv2/internal/models"
	"GalaxyClientv2/pkg/gogapi"
	"GalaxyClientv2/pkg/manifest"
	"GalaxyClientv2/pkg/operations"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type server struct {
	api      *gogapi.Client
	registry *operations.Registry
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.GlobalLogger.Error("Failed to encode response: " + err.Error())
	}
}

func (s *server) installHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InstallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.TaskResponse{Status: "error", Message: "invalid request body: " + err.Error()})
		return
	}
	if req.ProductID == "" || req.InstallPath == "" {
		writeJSON(w, http.StatusBadRequest, models.TaskResponse{Status: "error", Message: "product_id and install_path are required"})
		return
	}

	handle := s.registry.StartInstall(s.api, operations.InstallTask{
		ProductID:   req.ProductID,
		Platform:    req.Platform,
		Branch:      req.Branch,
		InstallPath: req.InstallPath,
		Language:    req.Language,
		Bitness:     req.Bitness,
		WorkerCount: req.WorkerCount,
		FileFilter:  req.FileFilter,
	})

	writeJSON(w, http.StatusAccepted, models.TaskResponse{TaskID: handle.ID, Status: "running", Message: "install started"})
}

func (s *server) taskListHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *server) taskStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	handle, ok := s.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.TaskResponse{TaskID: id, Status: "error", Message: "unknown task"})
		return
	}
	writeJSON(w, http.StatusOK, handle.Status())
}

func (s *server) taskCancelHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.registry.Cancel(id) {
		writeJSON(w, http.StatusConflict, models.TaskResponse{TaskID: id, Status: "error", Message: "task not running"})
		return
	}
	writeJSON(w, http.StatusOK, models.TaskResponse{TaskID: id, Status: "cancelling", Message: "cancel requested"})
}

func (s *server) userGamesHandler(w http.ResponseWriter, r *http.Request) {
	data, err := s.api.GetUserData()
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.TaskResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *server) productInfoHandler(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = "windows"
	}

	builds, err := s.api.GetBuilds(productID, platform)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.TaskResponse{Status: "error", Message: err.Error()})
		return
	}

	info := models.ProductInfo{ProductID: productID, BuildCount: len(builds.Items)}
	if build, err := manifest.SelectBuild(builds, r.URL.Query().Get("branch")); err == nil {
		info.BuildID = build.BuildID
		info.VersionName = build.VersionName
		info.Generation = build.Generation
	}
	if details, err := s.api.GetGameDetails(productID); err == nil {
		if title, ok := details["title"].(string); ok {
			info.Title = title
		}
	}
	writeJSON(w, http.StatusOK, info)
}

// wsTaskHandler streams task status over a websocket until the task ends.
func (s *server) wsTaskHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	handle, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "unknown task", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.GlobalLogger.Error("Websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Duration(config.Config.ProgressIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-handle.Coordinator.Events:
		case <-ticker.C:
		case <-handle.Done():
			_ = conn.WriteJSON(handle.Status())
			return
		}
		if err := conn.WriteJSON(handle.Status()); err != nil {
			logging.GlobalLogger.Debug("Websocket client gone: " + err.Error())
			return
		}
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/install", s.installHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/tasks", s.taskListHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id}", s.taskStatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks/{id}/cancel", s.taskCancelHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}/info", s.productInfoHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/user/games", s.userGamesHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws/tasks/{id}", s.wsTaskHandler)
	return r
}

func main() {
	s := &server{
		api:      gogapi.NewClient(config.Config.AuthToken),
		registry: operations.NewRegistry(),
	}

	logging.GlobalLogger.Info("Server starting on " + config.Config.ListenAddr)
	if err := http.ListenAndServe(config.Config.ListenAddr, s.routes()); err != nil {
		logging.GlobalLogger.Fatal(err.Error())
	}
}
