//go:build !darwin

package platformx

import (
	"runtime"

	"github.com/m-lab/socketstat/logging"
)

func maybeEmitWarning() {
	logging.Logger.WithField("goos", runtime.GOOS).Warn("This platform is not supported. Every socket snapshot will fail.")
}
