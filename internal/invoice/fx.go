package invoice

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/invoice/repository"
	"github.com/aquabill/aquabill/internal/invoice/service"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
