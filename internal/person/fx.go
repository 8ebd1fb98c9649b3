package person

import (
	"github.com/sitekhata/sitekhata/internal/person/service"
	"go.uber.org/fx"
)

var Module = fx.Module("person.service",
	fx.Provide(service.New),
)
