package syslog

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// SyslogPort is the default collector port for both UDP and TCP.
const SyslogPort = 514

// Drain is the destination of emitted messages.
type Drain struct {
	Address   string `yaml:"address"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
	Facility  string `yaml:"facility"`
	Timeout   string `yaml:"timeout"`
}

// EmitterConfig carries the per-instance emitter settings. Ident, when set,
// is prepended to every message. AppendNul adds the NUL terminator some old
// syslog daemons expect.
type EmitterConfig struct {
	Drain     Drain
	Ident     string
	AppendNul bool
}

// A Formatter decorates a message (timestamp, level) before the emitter
// wraps it in the syslog envelope. The emitter does not interpret the
// decorated text.
type Formatter interface {
	Format(level string, message string) string
}

type FormatterFunc func(level string, message string) string

func (f FormatterFunc) Format(level string, message string) string {
	return f(level, message)
}

// A DiagnosticSink receives the messages the emitter dropped because of
// transport failures, together with the failure. Implementations must not
// fail themselves.
type DiagnosticSink interface {
	ReportFailure(message string, err error)
}

type loggerSink struct {
	logger *log.Logger
}

func (s loggerSink) ReportFailure(message string, err error) {
	s.logger.Printf("dropping syslog message %q: %s\n", message, err)
}

type Emitter interface {
	Emit(level string, message string) error
}

type emitter struct {
	network   string
	address   string
	facility  Code
	ident     string
	appendNul bool
	timeout   time.Duration

	formatter Formatter
	sink      DiagnosticSink

	conn net.Conn
}

// NewEmitter resolves the drain destination once and returns an emitter
// bound to it. Transport "tcp" (case-insensitive) selects stream mode,
// anything else datagram mode; the port defaults to SyslogPort, the
// facility to "user". Resolution failure is returned, not masked.
//
// The returned emitter is not safe for concurrent use; callers must
// serialize Emit or use one emitter per goroutine.
func NewEmitter(errorLogger *log.Logger, config EmitterConfig, formatter Formatter) (*emitter, error) {
	drain := config.Drain

	port := drain.Port
	if port == 0 {
		port = SyslogPort
	}

	var timeout time.Duration
	if drain.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(drain.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing drain timeout: %w", err)
		}
	}

	network := "udp"
	if strings.EqualFold(drain.Transport, "tcp") {
		network = "tcp"
	}

	hostport := net.JoinHostPort(drain.Address, strconv.Itoa(port))

	var address string
	switch network {
	case "tcp":
		addr, err := net.ResolveTCPAddr(network, hostport)
		if err != nil {
			return nil, fmt.Errorf("resolving syslog destination %s: %w", hostport, err)
		}
		address = addr.String()
	default:
		addr, err := net.ResolveUDPAddr(network, hostport)
		if err != nil {
			return nil, fmt.Errorf("resolving syslog destination %s: %w", hostport, err)
		}
		address = addr.String()
	}

	return &emitter{
		network:   network,
		address:   address,
		facility:  facilityCode(drain.Facility),
		ident:     config.Ident,
		appendNul: config.AppendNul,
		timeout:   timeout,
		formatter: formatter,
		sink:      loggerSink{logger: errorLogger},
	}, nil
}

// facilityCode keeps the configured facility unresolved so the priority is
// recomputed from it on every emit.
func facilityCode(facility string) Code {
	if facility == "" {
		return Numeric(int(LogUser))
	}
	if value, err := strconv.Atoi(facility); err == nil {
		return Numeric(value)
	}
	return Named(facility)
}

// Emit formats the message, wraps it in the "<N>" envelope, and sends it to
// the drain over a fresh connection. An unknown facility or severity keyword
// is returned as an error; a connect or send failure is reported to the
// diagnostic sink and swallowed, so a broken collector never takes the
// caller down with it. Callers must not assume the message arrived.
func (e *emitter) Emit(level string, message string) error {
	text := e.formatter.Format(level, message)
	if e.ident != "" {
		text = e.ident + text
	}
	if e.appendNul {
		text += "\x00"
	}

	priority, err := EncodePriority(e.facility, Named(MapLevel(level)))
	if err != nil {
		return err
	}

	payload := make([]byte, 0, len(text)+5)
	payload = append(payload, '<')
	payload = strconv.AppendInt(payload, int64(priority), 10)
	payload = append(payload, '>')
	payload = append(payload, text...)

	if err := e.send(payload); err != nil {
		if !isTransportError(err) {
			return err
		}
		e.sink.ReportFailure(message, err)
	}
	return nil
}

// send pays a full close-connect-send cycle for each payload. Minimal
// socket stacks cannot re-arm a send-oriented datagram socket without
// reconnecting, and each message must go out even if the previous one left
// the connection broken.
func (e *emitter) send(payload []byte) error {
	e.Close()

	conn, err := net.DialTimeout(e.network, e.address, e.timeout)
	if err != nil {
		return err
	}
	e.conn = conn
	defer e.Close()

	if e.timeout != 0 {
		conn.SetWriteDeadline(time.Now().Add(e.timeout))
	}

	_, err = conn.Write(payload)
	return err
}

// Close tears down the current connection, if any. It is idempotent.
func (e *emitter) Close() error {
	if e.conn == nil {
		return nil
	}
	err := e.conn.Close()
	e.conn = nil
	return err
}

// isTransportError reports whether err is a runtime transport failure. Only
// those are swallowed by Emit; anything else indicates a programming or
// configuration error and still propagates.
func isTransportError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}
