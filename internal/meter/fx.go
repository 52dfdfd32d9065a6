package meter

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/meter/repository"
	"github.com/aquabill/aquabill/internal/meter/service"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
