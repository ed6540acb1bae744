package cmd

import (
	"io"
	"net/http"
	"os"

	"github.com/masiarekpl/keypin/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/masiarekpl/keypin/helpertest"
)

var _ = Describe("root command", func() {
	BeforeEach(func() {
		configPath = defaultConfigPath
		apiHost = defaultHost
		apiPort = defaultPort
		cfg = nil
	})

	When("Help command is called", func() {
		log.Log().ExitFunc = nil
		It("should execute without error", func() {
			c := NewRootCommand()
			c.SetOut(io.Discard)
			c.SetArgs([]string{"help"})
			err := c.Execute()
			Expect(err).Should(Succeed())
		})
	})

	When("Config provided", func() {
		var cfgFile string

		BeforeEach(func() {
			cfgFile = ConfigFile("config",
				"identity:",
				"  metaDomain: _identity.example.com",
				"ports:",
				"  http: 127.0.0.1:8080",
			)
		})

		It("should accept env var", func() {
			os.Setenv(configFileEnvVar, cfgFile)
			DeferCleanup(func() { os.Unsetenv(configFileEnvVar) })

			Expect(initConfig()).Should(Succeed())

			Expect(configPath).Should(Equal(cfgFile))
			Expect(cfg.Identity.MetaDomain).Should(Equal("_identity.example.com"))
		})

		It("should take API host and port from the config", func() {
			configPath = cfgFile

			Expect(initConfig()).Should(Succeed())
			Expect(apiHost).Should(Equal("127.0.0.1"))
			Expect(apiPort).Should(Equal(uint16(8080)))
		})

		It("should fail with invalid HTTP port", func() {
			configPath = ConfigFile("config_with_invalid_http",
				"ports:",
				"  http: 127.0.0.1:invalid",
			)

			err := initConfig()
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(ContainSubstring("can't convert port"))
		})

		It("should fail with unknown keys", func() {
			configPath = ConfigFile("config_unknown",
				"upstreams:",
				"  groups: {}",
			)

			Expect(initConfig()).Should(MatchError(ContainSubstring("unable to load configuration")))
		})
	})

	Describe("apiURL function", func() {
		It("should return correct URL with default values", func() {
			Expect(apiURL()).Should(Equal("http://localhost:4000/api"))
		})

		It("should return correct URL with custom values", func() {
			apiHost = "127.0.0.1"
			apiPort = 8080

			Expect(apiURL()).Should(Equal("http://127.0.0.1:8080/api"))
		})

		It("should bracket IPv6 hosts", func() {
			apiHost = "::1"

			Expect(apiURL()).Should(Equal("http://[::1]:4000/api"))
		})
	})

	Describe("printOkOrError function", func() {
		It("should return nil for OK status", func() {
			resp := &http.Response{StatusCode: http.StatusOK, Status: "200 OK"}

			Expect(printOkOrError(resp, "")).Should(Succeed())
		})

		It("should return error for non-OK status", func() {
			resp := &http.Response{StatusCode: http.StatusBadRequest, Status: "400 Bad Request"}

			err := printOkOrError(resp, "Error message")
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(ContainSubstring("400 Bad Request"))
			Expect(err.Error()).Should(ContainSubstring("Error message"))
		})
	})

	Describe("Command tree", func() {
		It("should create root command with all subcommands", func() {
			c := NewRootCommand()

			subCmdNames := []string{}
			for _, subCmd := range c.Commands() {
				subCmdNames = append(subCmdNames, subCmd.Name())
			}

			Expect(subCmdNames).Should(ContainElements(
				"resolve", "types", "encrypt", "send", "version", "serve", "cache", "validate"))
		})

		It("should set flags correctly", func() {
			c := NewRootCommand()

			configFlag := c.PersistentFlags().Lookup("config")
			Expect(configFlag).ShouldNot(BeNil())
			Expect(configFlag.Shorthand).Should(Equal("c"))
			Expect(configFlag.DefValue).Should(Equal(defaultConfigPath))

			apiHostFlag := c.PersistentFlags().Lookup("apiHost")
			Expect(apiHostFlag).ShouldNot(BeNil())
			Expect(apiHostFlag.DefValue).Should(Equal(defaultHost))

			apiPortFlag := c.PersistentFlags().Lookup("apiPort")
			Expect(apiPortFlag).ShouldNot(BeNil())
			Expect(apiPortFlag.DefValue).Should(Equal("4000"))
		})
	})
})
