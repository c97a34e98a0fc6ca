package integration

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sl "github.com/ziutek/syslog"
)

// An Inbox collects the messages a SyslogServer receives.
type Inbox struct {
	Messages chan *sl.Message
}

func NewInbox() *Inbox {
	return &Inbox{Messages: make(chan *sl.Message, 100)}
}

type inboxHandler struct {
	*sl.BaseHandler

	inbox *Inbox
}

func newInboxHandler(inbox *Inbox) *inboxHandler {
	handler := &inboxHandler{
		BaseHandler: sl.NewBaseHandler(100, nil, false),
		inbox:       inbox,
	}

	go handler.mainLoop()

	return handler
}

func (h *inboxHandler) mainLoop() {
	for {
		message := h.Get()
		if message == nil {
			break
		}
		h.inbox.Messages <- message
	}
	h.End()
}

var serverCount int

// SyslogServer is a real syslog collector listening on UDP, delivering
// parsed messages to its inbox.
type SyslogServer struct {
	Addr   string
	server *sl.Server
}

func NewSyslogServer(inbox *Inbox) *SyslogServer {
	server := sl.NewServer()
	server.AddHandler(newInboxHandler(inbox))

	return &SyslogServer{server: server}
}

func (s *SyslogServer) Start() {
	serverCount++
	s.Addr = fmt.Sprintf("127.0.0.1:%d", 9800+100*GinkgoParallelProcess()+serverCount)

	err := s.server.Listen(s.Addr)
	Expect(err).NotTo(HaveOccurred())
}

func (s *SyslogServer) Stop() {
	s.server.Shutdown()
}
