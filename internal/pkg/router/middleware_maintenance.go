package router

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpservice/internal/pkg/config"
)

// middlewareMaintenance answers 503 for route patterns listed under
// app.maintenance.endpoints. The list is read on every request so a config
// reload takes effect immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg != nil {
				route := matchedRoutePath(r)
				blocked := lo.ContainsBy(cfg.GetArray("app.maintenance.endpoints"), func(e string) bool {
					return strings.TrimSpace(e) == route
				})
				if blocked {
					writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
