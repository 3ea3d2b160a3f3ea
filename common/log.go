package common

import (
	"os"

	"go.uber.org/zap"
)

func initZapLogger() *zap.Logger {
	switch GPING_LOG_LEVEL {
	case "development":
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	case "production":
		fallthrough
	default:
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return logger
	}
}

var (
	GPING_LOG_LEVEL             = os.Getenv("GPING_LOG_LEVEL")
	logger          *zap.Logger = initZapLogger()
)

// GetLogger returns the shared logger, rebuilding it when GPING_LOG_LEVEL
// changed since the last call.
func GetLogger() *zap.Logger {
	if GPING_LOG_LEVEL != os.Getenv("GPING_LOG_LEVEL") {
		GPING_LOG_LEVEL = os.Getenv("GPING_LOG_LEVEL")
		*logger = *initZapLogger()
	}
	return logger
}
