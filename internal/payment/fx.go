package payment

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/payment/repository"
	"github.com/aquabill/aquabill/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
