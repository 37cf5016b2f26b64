// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package oom

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/jaypipes/ghw"
	"github.com/safchain/ethtool"
	"k8s.io/utils/ptr"
)

// eepromReader is the part of ethtool the host provider needs.
type eepromReader interface {
	ModuleEeprom(intf string) ([]byte, error)
	Close()
}

// HostProvider exposes the transceivers plugged into the host's NICs. Module memory is
// read through the ethtool module EEPROM interface, which is read-only.
type HostProvider struct {
	log    logr.Logger
	mu     sync.Mutex
	eeprom eepromReader
	nics   []string
}

var _ Provider = &HostProvider{}

// NewHostProvider enumerates the physical NICs of the host.
func NewHostProvider(log logr.Logger) (*HostProvider, error) {
	netInfo, err := ghw.Network()
	if err != nil {
		return nil, fmt.Errorf("could not get network info: %w", err)
	}
	ethHandle, err := ethtool.NewEthtool()
	if err != nil {
		return nil, fmt.Errorf("could not open ethtool handle: %w", err)
	}

	var nics []string
	for _, nic := range netInfo.NICs {
		if nic.IsVirtual {
			continue
		}
		log.V(1).Info("Found NIC", "name", nic.Name, "pciAddress", ptr.Deref(nic.PCIAddress, "unknown"))
		nics = append(nics, nic.Name)
	}
	return newHostProvider(log, ethHandle, nics), nil
}

func newHostProvider(log logr.Logger, eeprom eepromReader, nics []string) *HostProvider {
	return &HostProvider{
		log:    log,
		eeprom: eeprom,
		nics:   nics,
	}
}

// Close releases the ethtool handle.
func (h *HostProvider) Close() {
	h.eeprom.Close()
}

func (h *HostProvider) MaxPorts(_ context.Context) (int, error) {
	return len(h.nics), nil
}

func (h *HostProvider) GetPortList(_ context.Context, ports []Port) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for i := 0; i < len(ports) && i < len(h.nics); i++ {
		port := Port{Num: i, Type: PortTypeNotPresent}
		data, err := h.eeprom.ModuleEeprom(h.nics[i])
		if err != nil {
			h.log.V(1).Info("No module EEPROM", "nic", h.nics[i], "error", err.Error())
		} else if len(data) > 0 {
			port.Type = PortType(data[0])
		}
		ports[i] = port
		n++
	}
	return n, nil
}

func (h *HostProvider) GetFunction(ctx context.Context, port Port, fn Function) (int, error) {
	loc, err := FunctionLocation(port.Type, fn)
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if _, err := h.GetMemoryRaw(ctx, port, loc.Address, loc.Page, loc.Offset, buf); err != nil {
		return 0, err
	}
	return loc.Decode(buf[0]), nil
}

func (h *HostProvider) SetFunction(_ context.Context, _ Port, fn Function, _ int) error {
	return fmt.Errorf("set %s: %w", fn, ErrNotSupported)
}

func (h *HostProvider) GetMemoryRaw(_ context.Context, port Port, address, page, offset int, data []byte) (int, error) {
	if port.Num < 0 || port.Num >= len(h.nics) {
		return 0, fmt.Errorf("port %d: %w", port.Num, ErrPortNotFound)
	}
	h.mu.Lock()
	eeprom, err := h.eeprom.ModuleEeprom(h.nics[port.Num])
	h.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to read module eeprom of %s: %w", h.nics[port.Num], err)
	}
	start, err := eepromIndex(port.Type, address, page, offset)
	if err != nil {
		return 0, err
	}
	if start+len(data) > len(eeprom) {
		return 0, &OutOfRangeError{Op: OpGetMemoryRaw, Offset: offset, Length: len(data), Limit: len(eeprom),
			Reason: "beyond module eeprom"}
	}
	return copy(data, eeprom[start:start+len(data)]), nil
}

func (h *HostProvider) SetMemoryRaw(_ context.Context, _ Port, _, _, _ int, _ []byte) (int, error) {
	return 0, fmt.Errorf("write module eeprom: %w", ErrNotSupported)
}

func (h *HostProvider) GetMemoryRaw16(_ context.Context, _ Port, _ int, _ []uint16) (int, error) {
	return 0, fmt.Errorf("word access: %w", ErrNotSupported)
}

func (h *HostProvider) SetMemoryRaw16(_ context.Context, _ Port, _ int, _ []uint16) (int, error) {
	return 0, fmt.Errorf("word access: %w", ErrNotSupported)
}

// eepromIndex maps a memory map location onto the flat EEPROM dump of the kernel:
// SFF-8472 dumps A0h followed by A2h, SFF-8636 dumps page 00h followed by the
// upper halves of pages 01h-03h.
func eepromIndex(t PortType, address, page, offset int) (int, error) {
	switch {
	case address == AddressA0 && page == 0:
		return offset, nil
	case t.IsSFPFamily() && address == AddressA2 && page == 0:
		return PageSize + offset, nil
	case t.IsQSFPFamily() && address == AddressA0 && page >= 1 && page <= 3 && offset >= 128:
		return PageSize + (page-1)*128 + offset - 128, nil
	}
	return 0, fmt.Errorf("address %#x page %d of %s: %w", address, page, t, ErrNotSupported)
}
