package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"yt-mp3-service/domain/pipeline"
)

// errorResponse is the uniform error envelope. Error carries the safe
// summary; internal diagnostics stay in the server log.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// withAPIChecks applies the shared per-endpoint policy: CORS headers,
// OPTIONS preflight, POST-only enforcement and the optional origin
// allow-list.
func (s *Server) withAPIChecks(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		if r.Method != http.MethodPost {
			s.writeError(w, r, pipeline.NewError(pipeline.KindMethodNotAllowed,
				"only POST requests are allowed", nil))
			return
		}

		if s.cfg.EnforceOriginAllowlist && !s.originAllowed(r) {
			s.writeError(w, r, pipeline.NewError(pipeline.KindUnauthorized,
				"request origin is not allowed", errors.New("origin/referer not in allow-list")))
			return
		}

		next(w, r)
	}
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	allowOrigin := "*"
	if s.cfg.EnforceOriginAllowlist {
		if origin := r.Header.Get("Origin"); origin != "" && s.matchesAllowlist(origin) {
			allowOrigin = origin
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// originAllowed checks the Origin header, falling back to Referer. This
// is trivially spoofable and is kept only as a nuisance barrier for the
// companion front-end, not as an access control.
func (s *Server) originAllowed(r *http.Request) bool {
	if origin := r.Header.Get("Origin"); origin != "" {
		return s.matchesAllowlist(origin)
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		return s.matchesAllowlist(referer)
	}
	return false
}

func (s *Server) matchesAllowlist(value string) bool {
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.HasPrefix(value, allowed) {
			return true
		}
	}
	return false
}

// writeError classifies err, logs the full detail and emits only the
// safe envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	pe := pipeline.Classify(err)
	s.logger.Printf("%s %s failed: kind=%s detail=%v", r.Method, r.URL.Path, pe.Kind, pe.Err)
	writeJSON(w, pe.Kind.HTTPStatus(), errorResponse{Error: pe.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
