package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/investai/internal/scheduler"
)

// Pinger is the part of the database used for status checks
type Pinger interface {
	QuickCheck(ctx context.Context) error
}

// JobRunner lists scheduled jobs and runs them on demand
type JobRunner interface {
	Jobs() []scheduler.JobStatus
	RunNow(name string) error
}

// SystemStatusResponse is returned by GET /system/status
type SystemStatusResponse struct {
	Status        string                `json:"status"`
	Database      string                `json:"database"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	DataDirMB     float64               `json:"data_dir_mb"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
}

// SystemHandlers handles monitoring and job endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	db          Pinger
	jobs        JobRunner
	stats       func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, db Pinger, jobs JobRunner) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		db:          db,
		jobs:        jobs,
	}
	h.stats = h.getSystemStats
	return h
}

// HandleSystemStatus returns database, host and job status.
// A failing database ping reports "degraded" with 503.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	resp := SystemStatusResponse{
		Status:        "healthy",
		Database:      "ok",
		DataDirMB:     h.getDirSize(h.dataDir),
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		Jobs:          []scheduler.JobStatus{},
	}
	resp.CPUPercent, resp.MemoryPercent = h.stats()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.QuickCheck(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		resp.Status = "degraded"
		resp.Database = err.Error()
	}

	if h.jobs != nil {
		resp.Jobs = h.jobs.Jobs()
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// HandleJobsStatus returns scheduler job status
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Jobs()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// HandleRunJob runs a registered job immediately and waits for it
// POST /system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		h.writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")

	err := h.jobs.RunNow(name)
	switch {
	case err == nil:
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.writeError(w, http.StatusNotFound, "Job not found")
		return
	case errors.Is(err, scheduler.ErrJobRunning):
		h.writeError(w, http.StatusConflict, "Job already running")
		return
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": name + " completed",
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats returns CPU and RAM usage percentages.
// The CPU sample is 100ms so the endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
