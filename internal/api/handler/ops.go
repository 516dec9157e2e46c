// Package handler provides HTTP handlers for the air quality tracker API.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/breatheroute/airtracker/internal/api/models"
	"github.com/breatheroute/airtracker/internal/api/response"
	"github.com/breatheroute/airtracker/internal/provider/resilience"
)

// Pinger is a dependency that can report readiness (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig holds dependencies for the ops endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry supplies upstream provider health (optional).
	Registry *resilience.Registry

	// Subsystems are pinged by the readiness and status checks, keyed by name.
	Subsystems map[string]Pinger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. It fails while any subsystem is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems := h.checkSubsystems(r.Context())

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	for _, s := range subsystems {
		if s.Status != models.HealthStatusOK {
			health.Status = models.HealthStatusFail
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Version:    h.cfg.Version,
		Time:       models.Timestamp(time.Now()),
		Subsystems: h.checkSubsystems(r.Context()),
		Providers:  []models.ProviderStatus{},
	}

	if h.cfg.Registry != nil {
		for _, ph := range h.cfg.Registry.Snapshot() {
			ps := models.ProviderStatus{
				Provider:            ph.Name,
				Status:              providerStatus(ph),
				CircuitState:        ph.CircuitState.String(),
				ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
				TotalSuccesses:      ph.Successes,
				TotalFailures:       ph.Failures,
				LastSuccessAt:       timestampPtr(ph.LastSuccessAt),
				LastFailureAt:       timestampPtr(ph.LastFailureAt),
			}
			if ph.LastError != "" {
				msg := ph.LastError
				ps.Message = &msg
			}
			status.Providers = append(status.Providers, ps)
		}
		for _, name := range h.cfg.Registry.Unhealthy() {
			status.ActiveDegradationFlags = append(status.ActiveDegradationFlags, "provider:"+name)
		}
	}

	for _, s := range status.Subsystems {
		if s.Status != models.HealthStatusOK {
			status.Status = models.HealthStatusFail
		}
	}
	if status.Status == models.HealthStatusOK && len(status.ActiveDegradationFlags) > 0 {
		status.Status = models.HealthStatusDegraded
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) checkSubsystems(ctx context.Context) []models.SubsystemStatus {
	names := make([]string, 0, len(h.cfg.Subsystems))
	for name := range h.cfg.Subsystems {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.SubsystemStatus, 0, len(names))
	for _, name := range names {
		p := h.cfg.Subsystems[name]
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Ping(pingCtx)
		cancel()

		s := models.SubsystemStatus{Name: name, Status: models.HealthStatusOK}
		if err != nil {
			detail := err.Error()
			s.Status = models.HealthStatusFail
			s.Detail = &detail
		}
		out = append(out, s)
	}
	return out
}

func providerStatus(ph *resilience.ProviderHealth) models.HealthStatus {
	switch ph.Condition() {
	case resilience.ConditionTripped:
		return models.HealthStatusFail
	case resilience.ConditionRecovering:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

func timestampPtr(t *time.Time) *models.Timestamp {
	if t == nil {
		return nil
	}
	return models.OptionalTimestamp(*t)
}
