package obs

import (
	"time"

	"go.uber.org/zap"
)

// Time measures an operation for structured logging. Use as:
//
//	defer obs.Time(log, "resolver.Resolve")(&err)
func Time(log *zap.Logger, op string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Warn("operation failed",
				zap.String("op", op),
				zap.Duration("dur", dur),
				zap.Error(*errp))
			return
		}
		log.Debug("operation complete",
			zap.String("op", op),
			zap.Duration("dur", dur))
	}
}
