package fakes

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/onsi/gomega/gbytes"
)

// Protocol represents the protocol used by the SyslogServer.
type Protocol string

// Names for common protocols.
const (
	ProtocolTCP Protocol = "tcp"
	ProtocolUDP Protocol = "udp"
)

type SyslogServer struct {
	// Address to listen on.
	address string
	// Protocol to listen with.
	protocol Protocol

	// Address the server actually bound, available after Start.
	Addr string

	// Buffer to store incoming messages.
	Buf *gbytes.Buffer

	// Network listener, when protocol is TCP.
	lis net.Listener
	// Packet connection, when protocol is UDP.
	pc net.PacketConn
	// Network connection.
	conn net.Conn

	// Channel to signal when the server is stopped.
	stopped chan struct{}

	// Logger for syslog server.
	log *log.Logger
}

// NewTCPSyslogServer creates a new TCP syslog server.
func NewTCPSyslogServer(addr string) *SyslogServer {
	return &SyslogServer{
		address:  addr,
		protocol: ProtocolTCP,
		Buf:      gbytes.NewBuffer(),
		stopped:  make(chan struct{}),
		log:      log.New(os.Stderr, "[fake syslog server] ", log.LstdFlags),
	}
}

// NewUDPSyslogServer creates a new UDP syslog server.
func NewUDPSyslogServer(addr string) *SyslogServer {
	return &SyslogServer{
		address:  addr,
		protocol: ProtocolUDP,
		Buf:      gbytes.NewBuffer(),
		stopped:  make(chan struct{}),
		log:      log.New(os.Stderr, "[fake syslog server] ", log.LstdFlags),
	}
}

// Start starts the syslog server. It attempts to start a network listener
// with the server's protocol, returning an error if it fails. If the
// listener is successfully started, an asynchronous loop is started to
// accept payloads and store them in the buffer.
// Stop is expected to be called after Start.
func (s *SyslogServer) Start() error {
	s.log.Printf("starting server on %s (%s)", s.address, s.protocol)

	switch s.protocol {
	case ProtocolTCP:
		l, err := net.Listen("tcp", s.address)
		if err != nil {
			return err
		}
		s.lis = l
		s.Addr = l.Addr().String()
		s.serve()
	case ProtocolUDP:
		pc, err := net.ListenPacket("udp", s.address)
		if err != nil {
			return err
		}
		s.pc = pc
		s.Addr = pc.LocalAddr().String()
		s.servePacket()
	default:
		return fmt.Errorf("unsupported protocol: %s", s.protocol)
	}

	return nil
}

// serve starts a new goroutine that listens for incoming connections.
// Only one connection is accepted at a time.
func (s *SyslogServer) serve() {
	go func() {
		for {
			conn, err := s.lis.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					s.log.Printf("accepting connection: %s", err)
				}
				close(s.stopped)
				return
			}
			s.conn = conn
			s.handleConnection(conn)
		}
	}()
}

func (s *SyslogServer) handleConnection(conn net.Conn) {
	s.log.Printf("handling a connection")

	defer func() {
		_ = conn.Close()
	}()

	_, err := io.Copy(s.Buf, conn)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Printf("copying from connection: %s", err)
	}
}

// servePacket starts a new goroutine that copies each received datagram
// into the buffer.
func (s *SyslogServer) servePacket() {
	go func() {
		buf := make([]byte, 2048)
		for {
			n, _, err := s.pc.ReadFrom(buf)
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					s.log.Printf("reading datagram: %s", err)
				}
				close(s.stopped)
				return
			}
			_, _ = s.Buf.Write(buf[:n])
		}
	}()
}

func (s *SyslogServer) Stop() error {
	s.log.Printf("stopping server on %s (%s)", s.Addr, s.protocol)

	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
	if s.pc != nil {
		_ = s.pc.Close()
	}

	<-s.stopped

	return nil
}
