package models

// task API models for the REST/WS surface

type InstallRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Platform    string `json:"platform" validate:"oneof=windows osx linux"`
	InstallPath string `json:"install_path" validate:"required"`
	Branch      string `json:"branch,omitempty"`
	Language    string `json:"language,omitempty"`
	Bitness     int    `json:"bitness,omitempty"`
	WorkerCount int    `json:"worker_count,omitempty"`
	// Substring filter, files not matching are skipped before any fetch.
	FileFilter string `json:"file_filter,omitempty"`
}

type TaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type TaskSummary struct {
	TotalFiles      int   `json:"total_files"`
	WrittenFiles    int   `json:"written_files"`
	SkippedFiles    int   `json:"skipped_files"`
	FailedFiles     int   `json:"failed_files"`
	TotalBytes      int64 `json:"total_bytes"`
	DownloadedBytes int64 `json:"downloaded_bytes"`
}

type TaskStatus struct {
	TaskID   string       `json:"task_id"`
	Status   string       `json:"status" validate:"oneof=running completed completed_with_failures failed"`
	State    string       `json:"state"`
	Progress *float64     `json:"progress,omitempty"`
	Summary  *TaskSummary `json:"summary,omitempty"`
	Error    *string      `json:"error,omitempty"`
}

type ProductInfo struct {
	ProductID   string `json:"product_id"`
	Title       string `json:"title"`
	BuildCount  int    `json:"build_count"`
	BuildID     string `json:"build_id,omitempty"`
	VersionName string `json:"version_name,omitempty"`
	Generation  int    `json:"generation,omitempty"`
}
