// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/ironcore-dev/oom-southbound/internal/metrics"
	"github.com/ironcore-dev/oom-southbound/oom"
	"github.com/ironcore-dev/oom-southbound/southbound"
)

var (
	setupLog = ctrl.Log.WithName("setup")
)

func main() {
	var (
		hostname        string
		port            int
		providerType    string
		shutdownTimeout time.Duration
	)

	flag.StringVar(&hostname, "hostname", "", "The address to listen on.")
	flag.IntVar(&port, "port", 9090, "The port to listen on.")
	flag.StringVar(&providerType, "provider", "fake", "The provider to serve: fake or host.")
	flag.DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "The timeout to wait for the server to shutdown.")

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if err := run(providerType, southbound.ServerConfig{
		Hostname:        hostname,
		Port:            port,
		ShutdownTimeout: shutdownTimeout,
	}); err != nil {
		setupLog.Error(err, "problem running southbound server")
		os.Exit(1)
	}
}

func run(providerType string, config southbound.ServerConfig) error {
	var provider oom.Provider
	switch providerType {
	case "fake":
		provider = oom.NewFakeProvider()
	case "host":
		host, err := oom.NewHostProvider(ctrl.Log.WithName("host"))
		if err != nil {
			return fmt.Errorf("unable to create host provider: %w", err)
		}
		defer host.Close()
		provider = host
	default:
		return fmt.Errorf("unknown provider %q", providerType)
	}

	ctx := ctrl.SetupSignalHandler()

	client := oom.NewClient(ctrl.Log.WithName("client"), metrics.InstrumentProvider(provider))
	server := southbound.NewServerHTTP(ctrl.Log.WithName("southbound"), client, config)

	setupLog.Info("starting southbound server", "provider", providerType)
	return server.Start(ctx)
}
