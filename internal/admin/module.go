package admin

import (
	"net/http"

	"go.uber.org/fx"
)

// NewAdminModule provides the admin handler and mounts its routes.
func NewAdminModule() fx.Option {
	return fx.Options(
		fx.Provide(NewHandler),
		fx.Invoke(func(mux *http.ServeMux, h *Handler) {
			h.Register(mux)
		}),
	)
}
