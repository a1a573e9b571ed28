package contractor

import (
	"github.com/motodesk/motodesk/internal/contractor/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("contractor",
	fx.Provide(repository.NewRepository),
)
