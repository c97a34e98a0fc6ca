package integration_test

import (
	"io/ioutil"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"

	. "code.cloudfoundry.org/whitebox/integration"

	sl "github.com/ziutek/syslog"

	"code.cloudfoundry.org/whitebox"
	"code.cloudfoundry.org/whitebox/integration/fakes"
	"code.cloudfoundry.org/whitebox/syslog"
)

func drainTo(addr string, transport string) syslog.Drain {
	host, portStr, err := net.SplitHostPort(addr)
	Expect(err).NotTo(HaveOccurred())
	port, err := strconv.Atoi(portStr)
	Expect(err).NotTo(HaveOccurred())

	return syslog.Drain{
		Address:   host,
		Port:      port,
		Transport: transport,
	}
}

func startWhitebox(config whitebox.Config, input string, args ...string) *gexec.Session {
	configPath := WriteConfig(config)
	DeferCleanup(func() { os.Remove(configPath) })

	command := exec.Command(whiteboxPath, append([]string{"-config", configPath}, args...)...)
	if input != "" {
		command.Stdin = strings.NewReader(input)
	}

	session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
	Expect(err).NotTo(HaveOccurred())
	return session
}

var _ = Describe("Whitebox", func() {
	Describe("one-shot mode", func() {
		It("delivers a single message over UDP and exits", func() {
			inbox := NewInbox()
			syslogServer := NewSyslogServer(inbox)
			syslogServer.Start()
			defer syslogServer.Stop()

			config := whitebox.Config{Destination: drainTo(syslogServer.Addr, "udp")}

			session := startWhitebox(config, "", "-level", "ERROR", "-message", "drive failure imminent")
			Eventually(session, "10s").Should(gexec.Exit(0))

			var message *sl.Message
			Eventually(inbox.Messages, "5s").Should(Receive(&message))
			Expect(message.Content).To(ContainSubstring("drive failure imminent"))
			Expect(int(message.Severity)).To(Equal(3), "ERROR should map to err")
			Expect(int(message.Facility)).To(Equal(1), "facility should default to user")

			Consistently(inbox.Messages).ShouldNot(Receive())
		})

		It("fails loudly on an unknown facility keyword", func() {
			config := whitebox.Config{
				Destination: syslog.Drain{Address: "127.0.0.1", Facility: "bogus_keyword"},
			}

			session := startWhitebox(config, "", "-message", "never sent")
			Eventually(session, "10s").Should(gexec.Exit(1))
			Expect(session.Err).To(gbytes.Say("Not a designated priority"))
		})
	})

	Describe("piped input", func() {
		It("emits each line over TCP with the priority header", func() {
			syslogServer := fakes.NewTCPSyslogServer("127.0.0.1:0")
			Expect(syslogServer.Start()).To(Succeed())
			defer syslogServer.Stop()

			config := whitebox.Config{Destination: drainTo(syslogServer.Addr, "tcp")}

			session := startWhitebox(config, "hello\nworld\n")
			Eventually(session, "10s").Should(gexec.Exit(0))

			Eventually(syslogServer.Buf, "5s").Should(gbytes.Say("<14>"))
			Eventually(syslogServer.Buf).Should(gbytes.Say("hello"))
			Eventually(syslogServer.Buf, "5s").Should(gbytes.Say("<14>"))
			Eventually(syslogServer.Buf).Should(gbytes.Say("world"))
		})

		It("emits each line over UDP as its own datagram", func() {
			syslogServer := fakes.NewUDPSyslogServer("127.0.0.1:0")
			Expect(syslogServer.Start()).To(Succeed())
			defer syslogServer.Stop()

			falseValue := false
			config := whitebox.Config{
				Destination: drainTo(syslogServer.Addr, "udp"),
				Ident:       "host1 ",
				AppendNul:   &falseValue,
				Level:       "CRITICAL",
			}

			session := startWhitebox(config, "meltdown\n")
			Eventually(session, "10s").Should(gexec.Exit(0))

			// user(1)<<3 | critical(2)
			Eventually(syslogServer.Buf, "5s").Should(gbytes.Say("<10>host1 "))
			Eventually(syslogServer.Buf).Should(gbytes.Say("meltdown"))
		})
	})

	Describe("following a file", func() {
		var (
			logDir  string
			logFile *os.File
		)

		BeforeEach(func() {
			var err error
			logDir, err = ioutil.TempDir("", "whitebox-test")
			Expect(err).NotTo(HaveOccurred())

			logFile, err = os.OpenFile(
				filepath.Join(logDir, "tail.log"),
				os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
				os.ModePerm,
			)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			logFile.Close()

			err := os.RemoveAll(logDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("emits any new lines of the followed file", func() {
			inbox := NewInbox()
			syslogServer := NewSyslogServer(inbox)
			syslogServer.Start()
			defer syslogServer.Stop()

			config := whitebox.Config{
				Destination: drainTo(syslogServer.Addr, "udp"),
				SourcePath:  logFile.Name(),
				Level:       "WARNING",
			}

			whiteboxRunner := NewWhiteboxRunner(whiteboxPath)
			whiteboxRunner.StartWithConfig(config)

			logFile.WriteString("hello\n")
			logFile.WriteString("world\n")
			logFile.Sync()
			logFile.Close()

			var message *sl.Message
			Eventually(inbox.Messages, "5s").Should(Receive(&message))
			Expect(message.Content).To(ContainSubstring("hello"))
			Expect(int(message.Severity)).To(Equal(4), "WARNING should map to warning")

			Eventually(inbox.Messages, "5s").Should(Receive(&message))
			Expect(message.Content).To(ContainSubstring("world"))

			whiteboxRunner.Stop()
		})

		It("does not emit lines written before it started", func() {
			logFile.WriteString("already present\n")
			logFile.Sync()

			inbox := NewInbox()
			syslogServer := NewSyslogServer(inbox)
			syslogServer.Start()
			defer syslogServer.Stop()

			config := whitebox.Config{
				Destination: drainTo(syslogServer.Addr, "udp"),
				SourcePath:  logFile.Name(),
			}

			whiteboxRunner := NewWhiteboxRunner(whiteboxPath)
			whiteboxRunner.StartWithConfig(config)

			logFile.WriteString("hello\n")
			logFile.Sync()

			var message *sl.Message
			Eventually(inbox.Messages, "5s").Should(Receive(&message))
			Expect(message.Content).To(ContainSubstring("hello"))
			Expect(message.Content).NotTo(ContainSubstring("already present"))

			whiteboxRunner.Stop()
		})
	})

	Describe("with an unreachable collector", func() {
		It("keeps running and reports dropped messages", func() {
			// Nothing listens on this address.
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			addr := listener.Addr().String()
			listener.Close()

			config := whitebox.Config{Destination: drainTo(addr, "tcp")}

			session := startWhitebox(config, "into the void\n")
			Eventually(session, "10s").Should(gexec.Exit(0))
			Expect(session.Err).To(gbytes.Say("dropping syslog message"))
			Expect(session.Err).To(gbytes.Say("into the void"))
		})
	})
})
