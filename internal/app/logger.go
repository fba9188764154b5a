package app

import (
	"github.com/turtacn/cdforge/internal/config"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

// NewLogger builds the process logger from the log section.  Output is
// "stdout", "stderr" or a file path.
func NewLogger(c config.LogConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	out := c.Output
	if out == "" {
		out = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           c.Format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
		EnableCaller:     c.EnableCaller,
		EnableStacktrace: c.EnableStacktrace,
	})
}

//Personal.AI order the ending
