package router

import (
	"net/http"
	"strconv"
	"strings"
)

// applyCORS sets cross-origin headers per the definition's CORS config
// and answers preflight requests. It reports whether the request was
// fully handled (preflight) and needs no further routing.
func (rt *Router) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	cfg := rt.def.Server.CORS
	if cfg == nil {
		return false
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	if !originAllowed(cfg.AllowedOrigins, origin) {
		return false
	}

	h := w.Header()
	if len(cfg.AllowedOrigins) == 0 {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}

	if r.Method != http.MethodOptions {
		return false
	}

	// Preflight.
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	h.Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
	if len(cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	} else if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
		h.Set("Access-Control-Allow-Headers", reqHeaders)
	}
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
	w.WriteHeader(http.StatusNoContent)
	return true
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
