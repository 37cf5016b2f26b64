// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package oom

import (
	"fmt"

	"github.com/go-logr/logr"
)

// HostProvider is only available on linux.
type HostProvider struct {
	FakeProvider
}

// NewHostProvider fails on platforms without ethtool.
func NewHostProvider(_ logr.Logger) (*HostProvider, error) {
	return nil, fmt.Errorf("host provider: %w on this platform", ErrNotSupported)
}

// Close is a no-op.
func (h *HostProvider) Close() {}
