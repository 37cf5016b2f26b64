// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ironcore-dev/oom-southbound/oom"
)

var _ = Describe("Southbound over HTTP", func() {
	var (
		fake       *oom.FakeProvider
		httpServer *httptest.Server
		remote     *ClientHTTP
		client     *oom.Client
		ports      []oom.Port
	)

	BeforeEach(func(ctx SpecContext) {
		fake = oom.NewFakeProvider()
		server := NewServerHTTP(ctrl.Log.WithName("server"), oom.NewClient(ctrl.Log.WithName("local"), fake), ServerConfig{})
		httpServer = httptest.NewServer(server.Handler())
		DeferCleanup(httpServer.Close)

		var err error
		remote, err = NewClientHTTP(ClientConfig{ServerURL: httpServer.URL + "/"})
		Expect(err).NotTo(HaveOccurred())
		Expect(remote.WaitForServer(ctx, 10*time.Millisecond, time.Second)).To(Succeed())

		client = oom.NewClient(GinkgoLogr, remote)
		ports, err = client.Ports(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should enumerate the remote ports", func() {
		Expect(ports).To(Equal(oom.DefaultFakePorts()))
	})

	It("should set and get functions remotely", func(ctx SpecContext) {
		Expect(client.SetFunction(ctx, ports[1], oom.FunctionTxDisable, 1)).To(Succeed())
		Expect(client.GetFunction(ctx, ports[1], oom.FunctionTxDisable)).To(Equal(1))
		Expect(client.SetFunction(ctx, ports[1], oom.FunctionTxDisable, 0)).To(Succeed())
		Expect(client.GetFunction(ctx, ports[1], oom.FunctionTxDisable)).To(Equal(0))
	})

	It("should move bytes and words remotely", func(ctx SpecContext) {
		data := make([]byte, 128)
		for i := range data {
			data[i] = byte(i)
		}
		n, err := client.SetMemoryRaw(ctx, ports[1], oom.AddressA2, 3, 128, 128, data)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(128))

		readBack := make([]byte, 128)
		_, err = client.GetMemoryRaw(ctx, ports[1], oom.AddressA2, 3, 128, 128, readBack)
		Expect(err).NotTo(HaveOccurred())
		Expect(readBack).To(Equal(data))

		words := []uint16{1000, 1001, 1002}
		_, err = client.SetMemoryRaw16(ctx, ports[3], 0x8A00, 3, words)
		Expect(err).NotTo(HaveOccurred())
		wordsBack := make([]uint16, 2)
		_, err = client.GetMemoryRaw16(ctx, ports[3], 0x8A01, 2, wordsBack)
		Expect(err).NotTo(HaveOccurred())
		Expect(wordsBack).To(Equal([]uint16{1001, 1002}))
	})

	It("should carry out of range failures as typed errors", func(ctx SpecContext) {
		_, err := remote.SetMemoryRaw(ctx, ports[1], oom.AddressA2, 3, 200, make([]byte, 100))
		var rangeErr *oom.OutOfRangeError
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.Reason).To(ContainSubstring("outside of addressable window"))

		_, err = remote.GetMemoryRaw16(ctx, ports[3], oom.WordSpaceSize, make([]uint16, 1))
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
	})

	It("should carry provider failures as access errors", func(ctx SpecContext) {
		fake.InjectFailure(oom.OpGetFunction, errors.New("i2c nack"))
		_, err := client.GetFunction(ctx, ports[0], oom.FunctionTxDisable)
		var accessErr *oom.AccessError
		Expect(errors.As(err, &accessErr)).To(BeTrue())
		Expect(accessErr.Port).To(Equal(0))
		Expect(err.Error()).To(ContainSubstring("i2c nack"))
	})

	It("should report transport failures as access errors", func(ctx SpecContext) {
		httpServer.Close()
		_, err := remote.MaxPorts(ctx)
		var accessErr *oom.AccessError
		Expect(errors.As(err, &accessErr)).To(BeTrue())
	})

	It("should reject wrong methods and malformed payloads", func() {
		resp, err := http.Get(httpServer.URL + "/memory/get")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body.Close()).To(Succeed())
		Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))

		resp, err = http.Post(httpServer.URL+"/memory/get", "application/json", strings.NewReader("{"))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body.Close()).To(Succeed())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		resp, err = http.Get(httpServer.URL + "/portlist?count=many")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body.Close()).To(Succeed())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("should serve metrics", func() {
		resp, err := http.Get(httpServer.URL + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body.Close()).To(Succeed())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})

var _ = Describe("ClientHTTP", func() {
	It("should give up waiting for an unreachable server", func(ctx SpecContext) {
		remote, err := NewClientHTTP(ClientConfig{ServerURL: "http://127.0.0.1:1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(remote.WaitForServer(ctx, 10*time.Millisecond, 50*time.Millisecond)).NotTo(Succeed())
	})

	It("should fail on a missing CA file", func() {
		_, err := NewClientHTTP(ClientConfig{ServerURL: "https://localhost", CAFile: "/does/not/exist"})
		Expect(err).To(MatchError(ContainSubstring("failed to read CA file")))
	})
})

var _ = Describe("ServerHTTP", func() {
	It("should stop when its context is done", func(ctx SpecContext) {
		server := NewServerHTTP(GinkgoLogr, oom.NewClient(GinkgoLogr, oom.NewFakeProvider()), ServerConfig{
			Hostname:        "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
		})
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error)
		go func() {
			defer GinkgoRecover()
			done <- server.Start(runCtx)
		}()
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})
