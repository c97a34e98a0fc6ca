package whitebox

import (
	"bufio"
	"io"
	"log"
	"os"

	"code.cloudfoundry.org/whitebox/syslog"
)

// A Pump emits every line read from Source at a fixed level until EOF. It
// backs the piped-input mode of the whitebox command.
type Pump struct {
	Source  io.Reader
	Level   string
	Emitter syslog.Emitter
	Logger  *log.Logger
}

func (pump *Pump) Run(signals <-chan os.Signal, ready chan<- struct{}) error {
	lines := make(chan string)
	done := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(pump.Source)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		done <- scanner.Err()
	}()

	close(ready)

	for {
		select {
		case line := <-lines:
			if err := pump.Emitter.Emit(pump.Level, line); err != nil {
				return err
			}
		case err := <-done:
			if err != nil {
				pump.Logger.Printf("reading input: %s\n", err)
			}
			return err
		case <-signals:
			return nil
		}
	}
}
