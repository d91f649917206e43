package logging

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global logger at stderr and, when logFile is set, tees
// into the file as well.
func Init(level zerolog.Level, logFile string) {
	console := zerolog.ConsoleWriter{Out: os.Stderr}

	var multi zerolog.LevelWriter
	if logFile == "" {
		multi = zerolog.MultiLevelWriter(console)
	} else {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		multi = zerolog.MultiLevelWriter(console, file)
	}

	logger := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	if level == zerolog.DebugLevel {
		log.Debug().Msg("Log level set to DEBUG")
	}
}
