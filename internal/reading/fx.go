package reading

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/reading/repository"
	"github.com/aquabill/aquabill/internal/reading/service"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
