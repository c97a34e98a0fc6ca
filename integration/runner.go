package integration

import (
	"io/ioutil"
	"os"
	"os/exec"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/onsi/gomega/gbytes"
	"github.com/onsi/gomega/gexec"
	yaml "gopkg.in/yaml.v2"

	"code.cloudfoundry.org/whitebox"
)

// WhiteboxRunner drives the whitebox binary in its long-running file
// following mode.
type WhiteboxRunner struct {
	whiteboxPath string
	configPath   string
	session      *gexec.Session
}

func NewWhiteboxRunner(whiteboxPath string) *WhiteboxRunner {
	return &WhiteboxRunner{whiteboxPath: whiteboxPath}
}

// WriteConfig marshals config to a temporary file and returns its path.
func WriteConfig(config whitebox.Config) string {
	contents, err := yaml.Marshal(config)
	Expect(err).NotTo(HaveOccurred())

	configFile, err := ioutil.TempFile("", "whitebox-config")
	Expect(err).NotTo(HaveOccurred())
	defer configFile.Close()

	_, err = configFile.Write(contents)
	Expect(err).NotTo(HaveOccurred())

	return configFile.Name()
}

func (runner *WhiteboxRunner) StartWithConfig(config whitebox.Config) {
	runner.configPath = WriteConfig(config)

	command := exec.Command(runner.whiteboxPath, "-config", runner.configPath)
	session, err := gexec.Start(command, GinkgoWriter, GinkgoWriter)
	Expect(err).NotTo(HaveOccurred())
	runner.session = session

	Eventually(session.Err, "10s").Should(gbytes.Say("Start tail..."))
}

func (runner *WhiteboxRunner) Stop() {
	runner.session.Interrupt()
	Eventually(runner.session, "5s").Should(gexec.Exit())

	os.Remove(runner.configPath)
}
