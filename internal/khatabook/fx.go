package khatabook

import (
	"github.com/sitekhata/sitekhata/internal/khatabook/repository"
	"github.com/sitekhata/sitekhata/internal/khatabook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("khatabook.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
