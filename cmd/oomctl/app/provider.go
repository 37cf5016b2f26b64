// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ironcore-dev/oom-southbound/oom"
	"github.com/ironcore-dev/oom-southbound/southbound"
)

const (
	providerFake   = "fake"
	providerHost   = "host"
	providerRemote = "remote"
)

// newClient creates the client for the selected provider. The returned func releases the provider.
func newClient(ctx context.Context) (*oom.Client, func(), error) {
	log := ctrl.Log.WithName(Name)
	switch providerType {
	case providerFake:
		return oom.NewClient(log, oom.NewFakeProvider()), func() {}, nil
	case providerHost:
		host, err := oom.NewHostProvider(log.WithName("host"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create host provider: %w", err)
		}
		return oom.NewClient(log, host), host.Close, nil
	case providerRemote:
		remote, err := southbound.NewClientHTTP(southbound.ClientConfig{
			ServerURL:          serverURL,
			CAFile:             caFile,
			CertFile:           certFile,
			KeyFile:            keyFile,
			InsecureSkipVerify: insecureSkipVerify,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create southbound client: %w", err)
		}
		if err := remote.WaitForServer(ctx, 200*time.Millisecond, waitTimeout); err != nil {
			return nil, nil, fmt.Errorf("southbound server %s not ready: %w", serverURL, err)
		}
		return oom.NewClient(log, remote), remote.CloseIdleConnections, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", providerType)
}

// lookupPort enumerates the ports and returns the one with the given port number.
func lookupPort(ctx context.Context, client *oom.Client, arg string) (oom.Port, error) {
	num, err := strconv.Atoi(arg)
	if err != nil {
		return oom.Port{}, fmt.Errorf("invalid port number %q", arg)
	}
	ports, err := client.Ports(ctx)
	if err != nil {
		return oom.Port{}, err
	}
	for _, p := range ports {
		if p.Num == num {
			return p, nil
		}
	}
	return oom.Port{}, fmt.Errorf("port %d: %w", num, oom.ErrPortNotFound)
}
