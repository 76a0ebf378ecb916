package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, PATCH, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, Accept"
	corsMaxAge       = "86400"
)

// CORS returns a handler that adds CORS headers for allowed origins and
// responds to OPTIONS preflight requests with 204. An allowed origin of "*"
// admits any origin, but then credentials are not advertised.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			allowed[o] = struct{}{}
		}
	}

	match := func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		if _, ok := allowed[origin]; ok {
			return origin, true
		}
		if wildcard {
			return "*", true
		}
		return "", false
	}

	setOrigin := func(hdr http.Header, value string) {
		hdr.Set("Access-Control-Allow-Origin", value)
		hdr.Add("Vary", "Origin")
		if value != "*" {
			hdr.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value, ok := match(r.Header.Get("Origin"))

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if ok {
				setOrigin(w.Header(), value)
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ok {
			setOrigin(w.Header(), value)
		}
		next.ServeHTTP(w, r)
	})
}
