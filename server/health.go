package server

import (
	"net/http"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/nanhai/arena/version"
)

// HandleHealth reports process and database health
func (s *ArenaServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	dbStatus := "ok"
	if err := s.db.Ping(); err != nil {
		dbStatus = "unreachable"
		s.logger.Warnw("Health check database ping failed", "error", err)
	}

	versionInfo := version.Get()
	health := map[string]interface{}{
		"status":   "ok",
		"database": dbStatus,
		"clients":  clientCount,
		"version":  versionInfo.Version,
		"commit":   versionInfo.Short(),
	}
	if dbStatus != "ok" {
		health["status"] = "degraded"
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		health["memory_used_percent"] = vm.UsedPercent
	}

	writeSuccess(w, health)
}
