package main

import (
	"flag"
	"log"
	"os"

	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/sigmon"

	"code.cloudfoundry.org/whitebox"
	"code.cloudfoundry.org/whitebox/syslog"
)

var configPath = flag.String(
	"config",
	"",
	"path to the configuration file",
)

var message = flag.String(
	"message",
	"",
	"send a single message and exit",
)

var level = flag.String(
	"level",
	"",
	"level name for emitted messages (overrides the configured level)",
)

func main() {
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if *configPath == "" {
		logger.Fatalln("-config must be specified")
	}

	config, err := whitebox.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("could not load config file: %s\n", err)
	}

	if *level != "" {
		config.Level = *level
	}

	emitter, err := syslog.NewEmitter(logger, config.EmitterConfig(), syslog.NewLineFormatter(config.UseRFC3339))
	if err != nil {
		logger.Fatalf("could not set up syslog emitter: %s\n", err)
	}

	if *message != "" {
		if err := emitter.Emit(config.Level, *message); err != nil {
			logger.Fatalf("could not emit message: %s\n", err)
		}
		return
	}

	var runner ifrit.Runner
	if config.SourcePath != "" {
		runner = &whitebox.Tailer{
			Path:    config.SourcePath,
			Level:   config.Level,
			Emitter: emitter,
			Logger:  logger,
		}
	} else {
		runner = &whitebox.Pump{
			Source:  os.Stdin,
			Level:   config.Level,
			Emitter: emitter,
			Logger:  logger,
		}
	}

	running := ifrit.Invoke(sigmon.New(runner))

	err = <-running.Wait()
	if err != nil {
		logger.Fatalf("failed: %s", err)
	}
}
