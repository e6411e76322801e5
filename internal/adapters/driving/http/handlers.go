package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/mixinforge/mixinengine/internal/core/domain"
)

const adminTokenTTL = 12 * time.Hour

func adminClaims(subject string, now time.Time) domain.AdminClaims {
	return domain.AdminClaims{
		Subject:   subject,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(adminTokenTTL).Unix(),
	}
}

// writeJSON marshals v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleHealth godoc
// @Summary      Health check
// @Description  Reports whether the engine's storage and locking backends are reachable.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	healthy := true

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			resp.Checks["postgres"] = err.Error()
			healthy = false
		} else {
			resp.Checks["postgres"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			resp.Checks["redis"] = err.Error()
			healthy = false
		} else {
			resp.Checks["redis"] = "ok"
		}
	}

	if !healthy {
		resp.Status = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleVersion godoc
// @Summary      Build version
// @Tags         admin
// @Produce      json
// @Success      200  {object}  versionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{Version: s.version})
}

type versionResponse struct {
	Version string `json:"version"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin godoc
// @Summary      Admin login
// @Description  Exchanges the single admin username/password for a bearer token.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        credentials  body  loginRequest  true  "admin credentials"
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  errorResponse
// @Router       /admin/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.Username == "" || req.Username != s.adminUsername || !s.auth.VerifyPassword(req.Password, s.adminPasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	claims := adminClaims(req.Username, now)
	token, err := s.auth.GenerateToken(&claims)
	if err != nil {
		s.log.Error("failed to sign admin token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// handleRescan godoc
// @Summary      Trigger a mixin rescan
// @Description  Re-invokes the mixin scanner and rebuilds the in-memory mixin index.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  driving.EngineStats
// @Failure      409  {object}  errorResponse
// @Router       /admin/rescan [post]
func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Rescan(r.Context()); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.admin.Stats())
}

// handleStats godoc
// @Summary      Mixin and transform stats
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  driving.EngineStats
// @Router       /admin/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.admin.Stats())
}

type previewResponse struct {
	ClassName string `json:"class_name"`
	Matched   bool   `json:"matched"`
	Modified  bool   `json:"modified"`
	SizeIn    int    `json:"size_in"`
	SizeOut   int    `json:"size_out"`
}

// handlePreview godoc
// @Summary      Preview a transform
// @Description  Runs a class file through the engine without a live class-loading host, for operators testing mixin changes ahead of deploy. An empty body makes a probe-only call.
// @Tags         admin
// @Security     BearerAuth
// @Accept       application/octet-stream
// @Produce      json
// @Param        class  query  string  true  "fully-qualified runtime class name"
// @Success      200  {object}  previewResponse
// @Failure      400  {object}  errorResponse
// @Router       /admin/preview [post]
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	className := r.URL.Query().Get("class")
	if className == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: class")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if len(body) == 0 {
		matched := s.hostAdapter.ModifyClass(r.Context(), className, nil) != nil
		writeJSON(w, http.StatusOK, previewResponse{ClassName: className, Matched: matched})
		return
	}

	out := s.hostAdapter.ModifyClass(r.Context(), className, body)
	writeJSON(w, http.StatusOK, previewResponse{
		ClassName: className,
		Matched:   true,
		Modified:  out != nil,
		SizeIn:    len(body),
		SizeOut:   len(out),
	})
}
