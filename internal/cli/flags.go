package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

// GlobalFlags are the flags shared by every command.
type GlobalFlags struct {
	Debug   bool
	NoColor bool
}

// SetGlobalFlags applies the global flags
func SetGlobalFlags(flags *flag.FlagSet) *GlobalFlags {
	globalFlags := &GlobalFlags{}

	flags.BoolVar(&globalFlags.Debug, "debug", false, "输出每个解析步骤的调试日志")
	flags.BoolVar(&globalFlags.NoColor, "no-color", false, "禁用彩色输出")
	return globalFlags
}

// NewLogger creates the command logger. Logs go to w, results go to stdout.
func (g *GlobalFlags) NewLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    g.NoColor,
	})
	logger.SetLevel(logrus.InfoLevel)
	if g.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
