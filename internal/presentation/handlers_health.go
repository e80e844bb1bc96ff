package presentation

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type healthResponse struct {
	Status     string  `json:"status"`
	UptimeSecs float64 `json:"uptime_seconds"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// handleHealth reports liveness plus a snapshot of host CPU/RAM usage, a
// cheap signal for an operator deciding whether this instance is under
// resource pressure before routing more work to it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := s.systemStats()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		UptimeSecs: time.Since(s.startupTime).Seconds(),
		CPUPercent: cpuPct,
		MemPercent: memPct,
	})
}

// systemStats samples CPU over a short window rather than 1s, so /health
// stays responsive under a tight operator polling interval.
func (s *Server) systemStats() (cpuPercent, memPercent float64) {
	cpuPcts, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to sample cpu percent")
	} else if len(cpuPcts) > 0 {
		cpuPercent = cpuPcts[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to sample memory stats")
		return cpuPercent, 0
	}
	return cpuPercent, memStat.UsedPercent
}
