package wagerate

import (
	"github.com/sitekhata/sitekhata/internal/wagerate/repository"
	"github.com/sitekhata/sitekhata/internal/wagerate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wagerate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
