package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-datasync/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// ConfigResponse is a source config as shown by the admin API
// @Description Sync configuration for one source
type ConfigResponse struct {
	Source        domain.SourceType `json:"source" example:"standards"`
	Mode          domain.SyncMode   `json:"mode" example:"incremental"`
	Enabled       bool              `json:"enabled"`
	Schedule      string            `json:"schedule" example:"0 2 * * *"`
	RetryAttempts int               `json:"retry_attempts" example:"3"`
	RetryDelay    string            `json:"retry_delay" example:"5s"`
	NextRun       *time.Time        `json:"next_run,omitempty"`
}

// UpdateConfigRequest is a partial config update; omitted fields are unchanged
type UpdateConfigRequest struct {
	Mode          *string `json:"mode,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty"`
	Schedule      *string `json:"schedule,omitempty"`
	RetryAttempts *int    `json:"retry_attempts,omitempty"`
	RetryDelay    *string `json:"retry_delay,omitempty" example:"30s"`
}

// RunRequest triggers a manual sync
type RunRequest struct {
	Mode        string `json:"mode,omitempty" example:"full"`
	Retry       bool   `json:"retry,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"`
	RetryDelay  string `json:"retry_delay,omitempty" example:"5s"`
}

// LastSuccessResponse reports the most recent successful run for a source
type LastSuccessResponse struct {
	Source      domain.SourceType `json:"source"`
	LastSuccess *time.Time        `json:"last_success"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks the database and, when configured, Redis
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"status": "ready"}
	status := http.StatusOK

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if status != http.StatusOK {
		checks["status"] = "not ready"
	}

	writeJSON(w, status, checks)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleToken godoc
// @Summary      Issue admin token
// @Description  Exchange principal name and password for a JWT
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Principal credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /auth/token [post]
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "name and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			s.logger.Error("token issue failed", "error", err)
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Config endpoints

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs := s.registry.List()
	resp := make([]ConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		resp = append(resp, s.configResponse(cfg))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.configResponse(cfg))
}

// handleUpdateConfig godoc
// @Summary      Update sync config
// @Description  Merge a partial update into a source's config. Rejected updates leave it unchanged.
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        source   path      string               true  "Source"
// @Param        request  body      UpdateConfigRequest  true  "Fields to change"
// @Success      200      {object}  ConfigResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /sync/configs/{source} [patch]
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}

	var req UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.registry.Update(cfg.Source, patch); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update config")
		return
	}

	updated, _ := s.registry.Get(cfg.Source)
	writeJSON(w, http.StatusOK, s.configResponse(updated))
}

func (s *Server) handleEnableSource(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}
	s.registry.Enable(cfg.Source)
	updated, _ := s.registry.Get(cfg.Source)
	writeJSON(w, http.StatusOK, s.configResponse(updated))
}

func (s *Server) handleDisableSource(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}
	s.registry.Disable(cfg.Source)
	updated, _ := s.registry.Get(cfg.Source)
	writeJSON(w, http.StatusOK, s.configResponse(updated))
}

// Sync endpoints

// handleRunSync godoc
// @Summary      Run a sync now
// @Description  Runs one sync, or a retried sync, for a source and returns its outcome
// @Tags         Sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        source   path      string      true   "Source"
// @Param        request  body      RunRequest  false  "Run options"
// @Success      200      {object}  domain.SyncOutcome  "Run finished and was audited"
// @Failure      409      {object}  domain.SyncOutcome  "Source disabled or already running"
// @Failure      503      {object}  domain.SyncOutcome  "Provider or handler not configured"
// @Router       /sync/sources/{source}/run [post]
func (s *Server) handleRunSync(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := cfg.Mode
	if req.Mode != "" {
		parsed, err := domain.ParseSyncMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	var outcome *domain.SyncOutcome
	if req.Retry {
		delay := time.Duration(-1)
		if req.RetryDelay != "" {
			d, err := time.ParseDuration(req.RetryDelay)
			if err != nil || d < 0 {
				writeError(w, http.StatusBadRequest, "invalid retry_delay")
				return
			}
			delay = d
		}
		outcome = s.orchestrator.Retry(r.Context(), cfg.Source, mode, nil, req.MaxAttempts, delay)
	} else {
		outcome = s.orchestrator.Run(r.Context(), cfg.Source, mode, nil)
	}

	writeJSON(w, outcomeStatus(outcome), outcome)
}

func (s *Server) handleLastSuccess(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.lookupConfig(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, LastSuccessResponse{
		Source:      cfg.Source,
		LastSuccess: s.orchestrator.LastSuccessful(r.Context(), cfg.Source),
	})
}

// handleHistory godoc
// @Summary      Sync history
// @Description  Audit records newest first, optionally for one source
// @Tags         Sync
// @Produce      json
// @Security     BearerAuth
// @Param        source  query     string  false  "Source"
// @Param        limit   query     int     false  "Maximum records (default 50)"
// @Success      200     {array}   domain.AuditRecord
// @Failure      400     {object}  ErrorResponse
// @Router       /sync/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var source *domain.SourceType
	if raw := r.URL.Query().Get("source"); raw != "" {
		st, err := domain.ParseSourceType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		source = &st
	}

	limit := domain.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, s.orchestrator.History(r.Context(), source, limit))
}

// Helper functions

// lookupConfig resolves the {source} path value, writing 400/404 on failure
func (s *Server) lookupConfig(w http.ResponseWriter, r *http.Request) (domain.SyncConfig, bool) {
	source, err := domain.ParseSourceType(r.PathValue("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.SyncConfig{}, false
	}
	cfg, ok := s.registry.Get(source)
	if !ok {
		writeError(w, http.StatusNotFound, "no sync config for "+string(source))
		return domain.SyncConfig{}, false
	}
	return cfg, true
}

func (s *Server) configResponse(cfg domain.SyncConfig) ConfigResponse {
	resp := ConfigResponse{
		Source:        cfg.Source,
		Mode:          cfg.Mode,
		Enabled:       cfg.Enabled,
		Schedule:      cfg.Schedule,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay.String(),
	}
	if cfg.Enabled {
		if next, err := s.registry.NextRun(cfg.Source, time.Now()); err == nil {
			resp.NextRun = &next
		}
	}
	return resp
}

func (req UpdateConfigRequest) toPatch() (domain.SyncConfigPatch, error) {
	patch := domain.SyncConfigPatch{
		Enabled:       req.Enabled,
		Schedule:      req.Schedule,
		RetryAttempts: req.RetryAttempts,
	}
	if req.Mode != nil {
		mode, err := domain.ParseSyncMode(*req.Mode)
		if err != nil {
			return patch, err
		}
		patch.Mode = &mode
	}
	if req.RetryDelay != nil {
		d, err := time.ParseDuration(*req.RetryDelay)
		if err != nil {
			return patch, errors.New("invalid retry_delay")
		}
		patch.RetryDelay = &d
	}
	if patch.IsEmpty() {
		return patch, errors.New("no fields to update")
	}
	return patch, nil
}

// outcomeStatus maps outcomes that never reached a provider to non-2xx codes
func outcomeStatus(outcome *domain.SyncOutcome) int {
	switch outcome.Kind {
	case domain.FailureNotEnabled, domain.FailureInProgress:
		return http.StatusConflict
	case domain.FailureNotConfigured, domain.FailureHandlerMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
