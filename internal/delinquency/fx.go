package delinquency

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/delinquency/service"
)

var Module = fx.Module("delinquency.service",
	fx.Provide(service.New),
)
