package audit

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/audit/repository"
	"github.com/aquabill/aquabill/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
