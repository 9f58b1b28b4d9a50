package router

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed in app.maintenance.endpoints.
// The list is read once at startup.
func middlewareMaintenance(cfg config.Config) Middleware {
	var routes []string
	if cfg != nil {
		routes = lo.Compact(lo.Map(cfg.GetArray("app.maintenance.endpoints"), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	}
	blocked := lo.SliceToMap(routes, func(s string) (string, struct{}) { return s, struct{}{} })

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := blocked[matchedRoutePath(r)]; ok {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
