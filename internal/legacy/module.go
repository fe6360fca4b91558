package legacy

import (
	"go.uber.org/fx"
)

// NewLegacyGatewayModule provides the legacy store manager gateway.
func NewLegacyGatewayModule() fx.Option {
	return fx.Provide(
		newConfig,
		NewStoreManager,
		func(m *StoreManager) Gateway { return m },
	)
}
