package client

import (
	"go.uber.org/fx"

	"github.com/aquabill/aquabill/internal/client/repository"
	"github.com/aquabill/aquabill/internal/client/service"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
