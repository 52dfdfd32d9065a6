package billing

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/billing/service"
)

var Module = fx.Module("billing.service",
	fx.Provide(service.New),
)
