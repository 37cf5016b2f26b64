// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// Client drives a Provider. It validates every request before it reaches the provider
// and turns provider failures into typed errors.
type Client struct {
	provider Provider
	log      logr.Logger
}

// NewClient creates a new Client for the given Provider.
func NewClient(log logr.Logger, provider Provider) *Client {
	return &Client{
		provider: provider,
		log:      log,
	}
}

// Provider returns the wrapped Provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// MaxPorts returns the number of ports the provider can report.
func (c *Client) MaxPorts(ctx context.Context) (int, error) {
	count, err := c.provider.MaxPorts(ctx)
	if err != nil {
		c.log.Error(err, "Failed to query max ports")
		return 0, NewAccessError("maxPorts", -1, err)
	}
	if count < 0 {
		return 0, &AccessError{Op: "maxPorts", Port: -1, Err: fmt.Errorf("provider reported %d ports", count)}
	}
	c.log.V(1).Info("Queried max ports", "count", count)
	return count, nil
}

// PortList allocates a list of count ports and lets the provider fill it.
func (c *Client) PortList(ctx context.Context, count int) ([]Port, error) {
	if count < 0 || count > MaxPortCount {
		return nil, &AllocationError{Requested: count, Limit: MaxPortCount}
	}
	ports := make([]Port, count)
	filled, err := c.provider.GetPortList(ctx, ports)
	if err != nil {
		c.log.Error(err, "Failed to enumerate ports")
		return nil, NewAccessError("getPortList", -1, err)
	}
	if filled != count {
		return nil, &AccessError{Op: "getPortList", Port: -1,
			Err: fmt.Errorf("provider filled %d of %d entries", filled, count)}
	}
	seen := make(map[int]struct{}, count)
	for _, p := range ports {
		if _, ok := seen[p.Num]; ok {
			return nil, &AccessError{Op: "getPortList", Port: p.Num, Err: fmt.Errorf("duplicate port number")}
		}
		seen[p.Num] = struct{}{}
	}
	c.log.V(1).Info("Enumerated ports", "count", count)
	return ports, nil
}

// Ports queries the port count and enumerates all ports.
func (c *Client) Ports(ctx context.Context) ([]Port, error) {
	count, err := c.MaxPorts(ctx)
	if err != nil {
		return nil, err
	}
	return c.PortList(ctx, count)
}

// GetFunction reads the value of a control function.
func (c *Client) GetFunction(ctx context.Context, port Port, fn Function) (int, error) {
	value, err := c.provider.GetFunction(ctx, port, fn)
	if err != nil {
		c.log.Error(err, "Failed to get function", "port", port.Num, "function", fn.String())
		return 0, NewAccessError("getFunction", port.Num, err)
	}
	c.log.V(1).Info("Got function", "port", port.Num, "function", fn.String(), "value", value)
	return value, nil
}

// SetFunction writes the value of a control function. A verifying read is a separate call.
func (c *Client) SetFunction(ctx context.Context, port Port, fn Function, value int) error {
	if err := c.provider.SetFunction(ctx, port, fn, value); err != nil {
		c.log.Error(err, "Failed to set function", "port", port.Num, "function", fn.String(), "value", value)
		return NewAccessError("setFunction", port.Num, err)
	}
	c.log.V(1).Info("Set function", "port", port.Num, "function", fn.String(), "value", value)
	return nil
}

// GetMemoryRaw reads length bytes at offset of address/page into buf.
func (c *Client) GetMemoryRaw(ctx context.Context, port Port, address, page, offset, length int, buf []byte) (int, error) {
	if err := CheckByteRequest("getMemoryRaw", address, page, offset, length, len(buf)); err != nil {
		return 0, err
	}
	n, err := c.provider.GetMemoryRaw(ctx, port, address, page, offset, buf[:length])
	if err != nil {
		c.log.Error(err, "Failed to read memory", "port", port.Num, "address", address, "page", page, "offset", offset, "length", length)
		return n, NewAccessError("getMemoryRaw", port.Num, err)
	}
	c.log.V(1).Info("Read memory", "port", port.Num, "address", address, "page", page, "offset", offset, "length", n)
	return n, nil
}

// SetMemoryRaw writes the first length bytes of buf at offset of address/page.
func (c *Client) SetMemoryRaw(ctx context.Context, port Port, address, page, offset, length int, buf []byte) (int, error) {
	if err := CheckByteRequest("setMemoryRaw", address, page, offset, length, len(buf)); err != nil {
		return 0, err
	}
	n, err := c.provider.SetMemoryRaw(ctx, port, address, page, offset, buf[:length])
	if err != nil {
		c.log.Error(err, "Failed to write memory", "port", port.Num, "address", address, "page", page, "offset", offset, "length", length)
		return n, NewAccessError("setMemoryRaw", port.Num, err)
	}
	c.log.V(1).Info("Wrote memory", "port", port.Num, "address", address, "page", page, "offset", offset, "length", n)
	return n, nil
}

// GetMemoryRaw16 reads count words starting at the word offset into buf.
func (c *Client) GetMemoryRaw16(ctx context.Context, port Port, offset, count int, buf []uint16) (int, error) {
	if err := CheckWordRequest("getMemoryRaw16", offset, count, len(buf)); err != nil {
		return 0, err
	}
	n, err := c.provider.GetMemoryRaw16(ctx, port, offset, buf[:count])
	if err != nil {
		c.log.Error(err, "Failed to read words", "port", port.Num, "offset", offset, "count", count)
		return n, NewAccessError("getMemoryRaw16", port.Num, err)
	}
	c.log.V(1).Info("Read words", "port", port.Num, "offset", offset, "count", n)
	return n, nil
}

// SetMemoryRaw16 writes the first count words of buf starting at the word offset.
func (c *Client) SetMemoryRaw16(ctx context.Context, port Port, offset, count int, buf []uint16) (int, error) {
	if err := CheckWordRequest("setMemoryRaw16", offset, count, len(buf)); err != nil {
		return 0, err
	}
	n, err := c.provider.SetMemoryRaw16(ctx, port, offset, buf[:count])
	if err != nil {
		c.log.Error(err, "Failed to write words", "port", port.Num, "offset", offset, "count", count)
		return n, NewAccessError("setMemoryRaw16", port.Num, err)
	}
	c.log.V(1).Info("Wrote words", "port", port.Num, "offset", offset, "count", n)
	return n, nil
}

// CheckByteRequest validates a byte-granular request against the page window and the buffer size.
func CheckByteRequest(op string, address, page, offset, length, bufferSize int) error {
	switch {
	case address < 0 || address > 0xFF:
		return &OutOfRangeError{Op: op, Offset: offset, Length: length, Limit: 0xFF,
			Reason: fmt.Sprintf("invalid device address %#x", address)}
	case page < 0 || page > 0xFF:
		return &OutOfRangeError{Op: op, Offset: offset, Length: length, Limit: 0xFF,
			Reason: fmt.Sprintf("invalid page %d", page)}
	}
	return checkWindow(op, offset, length, bufferSize, PageSize)
}

// CheckWordRequest validates a word-granular request against the word space and the buffer size.
func CheckWordRequest(op string, offset, count, bufferSize int) error {
	return checkWindow(op, offset, count, bufferSize, WordSpaceSize)
}

func checkWindow(op string, offset, length, bufferSize, window int) error {
	switch {
	case length < 0:
		return &OutOfRangeError{Op: op, Offset: offset, Length: length, Limit: bufferSize, Reason: "negative length"}
	case length > bufferSize:
		return &OutOfRangeError{Op: op, Offset: offset, Length: length, Limit: bufferSize, Reason: "length exceeds buffer size"}
	case offset < 0 || offset+length > window:
		return &OutOfRangeError{Op: op, Offset: offset, Length: length, Limit: window, Reason: "outside of addressable window"}
	}
	return nil
}
