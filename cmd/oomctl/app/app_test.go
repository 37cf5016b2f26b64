// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironcore-dev/oom-southbound/oom"
	"github.com/ironcore-dev/oom-southbound/southbound"
)

var _ = Describe("oomctl", func() {
	Describe("run", func() {
		It("should run the built-in scenario against the fake provider", func(ctx SpecContext) {
			out, err := execute(ctx, "run")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Max Ports: 4"))
			Expect(out).To(ContainSubstring("Port: 3, TX_DISABLE value: 0"))
			Expect(out).To(ContainSubstring("1st, last words (should be 1001, 1255): 1001, 1255"))
			Expect(out).To(ContainSubstring("8 passed, 0 failed, 0 errored, 0 skipped"))
		})

		It("should write YAML reports", func(ctx SpecContext) {
			out, err := execute(ctx, "run", "-o", "yaml")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("scenario: southbound-validation"))
			Expect(out).To(ContainSubstring("aborted: false"))
		})

		It("should fail when the scenario aborts", func(ctx SpecContext) {
			path := filepath.Join(GinkgoT().TempDir(), "abort.yaml")
			Expect(os.WriteFile(path, []byte(`
name: abort
steps:
- action: writeWords
  port: 3
  offset: 65535
  length: 2
  abortOnError: true
- action: maxPorts
`), 0o600)).To(Succeed())

			out, err := execute(ctx, "run", "--scenario", path)
			Expect(err).To(MatchError(`scenario "abort" aborted`))
			Expect(out).To(ContainSubstring("run aborted"))
		})

		It("should fail on failed steps only in strict mode", func(ctx SpecContext) {
			path := filepath.Join(GinkgoT().TempDir(), "expect.yaml")
			Expect(os.WriteFile(path, []byte(`
name: expect
steps:
- action: maxPorts
  expectValue: 2
`), 0o600)).To(Succeed())

			_, err := execute(ctx, "run", "--scenario", path)
			Expect(err).NotTo(HaveOccurred())
			_, err = execute(ctx, "run", "--scenario", path, "--strict")
			Expect(err).To(MatchError(`scenario "expect" failed`))
		})

		It("should reject unknown output formats and providers", func(ctx SpecContext) {
			_, err := execute(ctx, "run", "-o", "xml")
			Expect(err).To(MatchError(ContainSubstring("unknown output format")))
			_, err = execute(ctx, "--provider", "serial", "run")
			Expect(err).To(MatchError(ContainSubstring("unknown provider")))
		})
	})

	Describe("port access", func() {
		It("should list ports", func(ctx SpecContext) {
			out, err := execute(ctx, "ports")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("      1      3      2      0  SFP\n"))
		})

		It("should get and set functions", func(ctx SpecContext) {
			out, err := execute(ctx, "function", "set", "1", "TX_DISABLE", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Port: 1, TX_DISABLE set to: 1\n"))

			out, err = execute(ctx, "function", "get", "1", "tx_disable")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("Port: 1, TX_DISABLE value: 0\n"))

			_, err = execute(ctx, "function", "get", "7", "TX_DISABLE")
			Expect(err).To(MatchError(ContainSubstring("port not found")))
		})

		It("should read and write bytes", func(ctx SpecContext) {
			out, err := execute(ctx, "read", "1", "--address", "0xA0", "--offset", "20", "--length", "8")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("       49524f4e 434f5245 \n"))

			out, err = execute(ctx, "write", "1", "--address", "0xA2", "--page", "3", "--data", "deadbeef")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("wrote 4 bytes to port 1, address 0xa2 page 3 offset 0\n"))

			_, err = execute(ctx, "read", "1", "--offset", "250", "--length", "8")
			Expect(err).To(MatchError(ContainSubstring("outside of addressable window")))
		})

		It("should read and write words", func(ctx SpecContext) {
			out, err := execute(ctx, "write16", "3", "--offset", "0x8A00", "--words", "1000,1001")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("wrote 2 words to port 3, offset 0x8a00\n"))

			out, err = execute(ctx, "read16", "3", "--offset", "0x8A00", "--count", "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("words of port 3 at 0x8a00: 0, 0\n"))

			_, err = execute(ctx, "write16", "3", "--words", "70000")
			Expect(err).To(MatchError(ContainSubstring("out of range")))
		})

		It("should decode identity keys", func(ctx SpecContext) {
			out, err := execute(ctx, "keys", "0", "VENDOR_NAME", "VENDOR_PN")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("VENDOR_NAME: IRONCORE\nVENDOR_PN: OOM-FAKE-QSFP_PLUS\n"))

			out, err = execute(ctx, "keys", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HavePrefix("DATE_CODE: 250101\n"))
		})
	})

	It("should drive a remote southbound server", func(ctx SpecContext) {
		fake := oom.NewFakeProvider()
		server := southbound.NewServerHTTP(GinkgoLogr, oom.NewClient(GinkgoLogr, fake), southbound.ServerConfig{})
		httpServer := httptest.NewServer(server.Handler())
		DeferCleanup(httpServer.Close)

		out, err := execute(ctx, "--provider", "remote", "--server-url", httpServer.URL, "function", "set", "2", "TX_DISABLE", "1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Port: 2, TX_DISABLE set to: 1\n"))

		out, err = execute(ctx, "--provider", "remote", "--server-url", httpServer.URL, "function", "get", "2", "TX_DISABLE")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Port: 2, TX_DISABLE value: 1\n"))
	})

	It("should print its version", func(ctx SpecContext) {
		out, err := execute(ctx, "version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("oomctl "))
	})
})
