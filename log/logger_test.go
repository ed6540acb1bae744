package log

import (
	"bytes"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Logger", func() {
	Describe("getHostname", func() {
		When("hostname file is provided", func() {
			var tmpFile *os.File

			BeforeEach(func() {
				var err error
				tmpFile, err = os.CreateTemp("", "hostname")
				Expect(err).Should(Succeed())
				_, err = tmpFile.WriteString("Keys-Host\n")
				Expect(err).Should(Succeed())
				DeferCleanup(func() { os.Remove(tmpFile.Name()) })
			})

			It("should use it", func() {
				hostname, err := getHostname(tmpFile.Name())
				Expect(err).Should(Succeed())
				Expect(hostname).Should(Equal("keys-host"))
			})
		})

		When("hostname file is not provided", func() {
			It("should fall back to the os hostname", func() {
				expected, err := os.Hostname()
				Expect(err).Should(Succeed())

				hostname, err := getHostname("")
				Expect(err).Should(Succeed())
				Expect(hostname).Should(Equal(expected))
			})
		})
	})

	Describe("EscapeInput", func() {
		It("should remove line breaks", func() {
			Expect(EscapeInput("v=1;\r\npub=x\n")).Should(Equal("v=1;pub=x"))
		})
	})

	Describe("ConfigureLogger", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = new(bytes.Buffer)
			Log().Out = buf
			DeferCleanup(func() {
				ConfigureLogger(Config{Level: LevelInfo, Format: FormatTypeText, Timestamp: true})
				Silence()
			})
		})

		It("should apply the level", func() {
			ConfigureLogger(Config{Level: LevelDebug, Format: FormatTypeText})

			Expect(Log().GetLevel()).Should(Equal(logrus.DebugLevel))
		})

		It("should write JSON when configured", func() {
			ConfigureLogger(Config{Level: LevelInfo, Format: FormatTypeJson})

			PrefixedLog("doh").Info("lookup done")

			Expect(buf.String()).Should(ContainSubstring(`"prefix":"doh"`))
			Expect(buf.String()).Should(ContainSubstring(`"msg":"lookup done"`))
		})

		It("should add hostname when configured", func() {
			ConfigureLogger(Config{Level: LevelInfo, Format: FormatTypeJson, Hostname: true})

			Log().Info("hello")

			Expect(buf.String()).Should(ContainSubstring(`"hostname":`))
		})
	})

	Describe("Enums", func() {
		It("should parse levels and formats", func() {
			l, err := ParseLevel("warn")
			Expect(err).Should(Succeed())
			Expect(l).Should(Equal(LevelWarn))

			f, err := ParseFormatType("json")
			Expect(err).Should(Succeed())
			Expect(f).Should(Equal(FormatTypeJson))

			_, err = ParseLevel("loud")
			Expect(err).Should(HaveOccurred())
		})
	})
})
