package invoice

import (
	"github.com/sitekhata/sitekhata/internal/invoice/render"
	"github.com/sitekhata/sitekhata/internal/invoice/repository"
	"github.com/sitekhata/sitekhata/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(render.NewPDFRenderer),
	fx.Provide(service.New),
)
