package attendance

import (
	"github.com/sitekhata/sitekhata/internal/attendance/repository"
	"github.com/sitekhata/sitekhata/internal/attendance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attendance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
