package components

import (
	"resource-finder/internal/pkg/clock"
	"resource-finder/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewResourceFinder,
	),
)
