// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package sysinfo

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/siderolabs/go-smbios/smbios"
)

// Host identifies the machine a scenario ran on.
type Host struct {
	Hostname     string `json:"hostname" yaml:"hostname"`
	OS           string `json:"os" yaml:"os"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	ProductName  string `json:"productName,omitempty" yaml:"productName,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty"`
	UUID         string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	BIOSVendor   string `json:"biosVendor,omitempty" yaml:"biosVendor,omitempty"`
	BIOSVersion  string `json:"biosVersion,omitempty" yaml:"biosVersion,omitempty"`
}

// Collect gathers the host identity. SMBIOS data is optional, hosts without
// readable DMI tables only report their name and platform.
func Collect(log logr.Logger) Host {
	host := Host{OS: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)}
	if name, err := os.Hostname(); err == nil {
		host.Hostname = name
	}

	sm, err := smbios.New()
	if err != nil {
		log.V(1).Info("SMBIOS not available", "error", err.Error())
		return host
	}
	host.Manufacturer = sm.SystemInformation.Manufacturer
	host.ProductName = sm.SystemInformation.ProductName
	host.SerialNumber = sm.SystemInformation.SerialNumber
	host.UUID = sm.SystemInformation.UUID
	host.BIOSVendor = sm.BIOSInformation.Vendor
	host.BIOSVersion = sm.BIOSInformation.Version
	return host
}

func (h Host) String() string {
	s := fmt.Sprintf("%s (%s)", h.Hostname, h.OS)
	if h.Manufacturer != "" || h.ProductName != "" {
		s += fmt.Sprintf(", %s %s", h.Manufacturer, h.ProductName)
	}
	if h.BIOSVersion != "" {
		s += fmt.Sprintf(", BIOS %s", h.BIOSVersion)
	}
	return s
}
