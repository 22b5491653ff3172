package logger

import (
	"context"
	"fmt"
	"os"

	gmw "github.com/Laisky/gin-middlewares/v7"
	glog "github.com/Laisky/go-utils/v6/log"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
)

// Logger is the process-wide logger used outside of request scope.
var Logger glog.Logger

func init() {
	Logger = newConsole(glog.LevelInfo)
}

// SetupLogger rebuilds the shared logger with the configured level.
func SetupLogger() {
	level := glog.LevelInfo
	if config.DebugEnabled {
		level = glog.LevelDebug
	}
	Logger = newConsole(level)
}

// Level returns the level name the request logger middleware should use.
func Level() string {
	if config.DebugEnabled {
		return glog.LevelDebug.String()
	}
	return glog.LevelInfo.String()
}

// FromContext returns the request-scoped logger when ctx carries a gin context,
// otherwise the shared logger.
func FromContext(ctx context.Context) glog.Logger {
	if ctx != nil {
		if ginCtx, ok := gmw.GetGinCtxFromStdCtx(ctx); ok {
			return gmw.GetLogger(ginCtx)
		}
	}
	return Logger
}

func newConsole(level glog.Level) glog.Logger {
	lg, err := glog.NewConsoleWithName(config.ServiceName, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %+v\n", err)
		os.Exit(1)
	}
	return lg
}
