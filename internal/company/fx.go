package company

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/company/repository"
	"github.com/aquabill/aquabill/internal/company/service"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
