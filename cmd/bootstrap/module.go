package bootstrap

import (
	"resource-finder/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// AppModule wires everything below configuration, so tests can supply their own config.Config.
var AppModule = fx.Options(
	LoggerModule,
	components.InfraModule,
	components.UseCaseModule,
	components.HandlerModule,
)

var Module = fx.Options(
	ConfigModule,
	AppModule,
)
