package env

import (
	"github.com/thatsimonsguy/ambient-hub/internal/config"
)

var Cfg *config.Config
