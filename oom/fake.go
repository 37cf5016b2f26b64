// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"context"
	"fmt"
	"sync"
)

// Operation names used for failure injection and metrics.
const (
	OpMaxPorts       = "maxPorts"
	OpGetPortList    = "getPortList"
	OpGetFunction    = "getFunction"
	OpSetFunction    = "setFunction"
	OpGetMemoryRaw   = "getMemoryRaw"
	OpSetMemoryRaw   = "setMemoryRaw"
	OpGetMemoryRaw16 = "getMemoryRaw16"
	OpSetMemoryRaw16 = "setMemoryRaw16"
)

// PageKey addresses one page of a device address.
type PageKey struct {
	Address int
	Page    int
}

// FakeModule is the in-memory state of one fake port.
type FakeModule struct {
	Port  Port
	Pages map[PageKey]*[PageSize]byte
	Words []uint16
}

// FakeProvider is an in-memory Provider without propagation delay.
type FakeProvider struct {
	mu       sync.Mutex
	modules  []*FakeModule
	failures map[string]error
}

var _ Provider = &FakeProvider{}

// DefaultFakePorts returns four ports, port 1 being an SFP module.
func DefaultFakePorts() []Port {
	return []Port{
		{Num: 0, Type: PortTypeQSFPPlus, SeqNum: 1},
		{Num: 1, Type: PortTypeSFP, SeqNum: 2},
		{Num: 2, Type: PortTypeSFP, SeqNum: 3},
		{Num: 3, Type: PortTypeQSFP28, SeqNum: 4},
	}
}

// NewFakeProvider creates a FakeProvider with the given ports, or DefaultFakePorts if none are given.
func NewFakeProvider(ports ...Port) *FakeProvider {
	f := &FakeProvider{}
	f.SetPorts(ports...)
	return f
}

// SetPorts replaces all modules of the provider with freshly seeded ones.
func (f *FakeProvider) SetPorts(ports ...Port) {
	if len(ports) == 0 {
		ports = DefaultFakePorts()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules = make([]*FakeModule, 0, len(ports))
	for _, p := range ports {
		m := &FakeModule{
			Port:  p,
			Pages: map[PageKey]*[PageSize]byte{},
		}
		m.seedIdentity()
		f.modules = append(f.modules, m)
	}
	f.failures = map[string]error{}
}

// InjectFailure makes every following call of op fail with err. A nil err clears the failure.
func (f *FakeProvider) InjectFailure(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// ClearFailures removes all injected failures.
func (f *FakeProvider) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = map[string]error{}
}

// Module returns the state of the port with the given number.
func (f *FakeProvider) Module(num int) (*FakeModule, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, err := f.module(num)
	return m, err == nil
}

func (f *FakeProvider) MaxPorts(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpMaxPorts]; err != nil {
		return 0, err
	}
	return len(f.modules), nil
}

func (f *FakeProvider) GetPortList(_ context.Context, ports []Port) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpGetPortList]; err != nil {
		return 0, err
	}
	n := 0
	for i := 0; i < len(ports) && i < len(f.modules); i++ {
		ports[i] = f.modules[i].Port
		n++
	}
	return n, nil
}

func (f *FakeProvider) GetFunction(_ context.Context, port Port, fn Function) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpGetFunction]; err != nil {
		return 0, err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return 0, err
	}
	loc, err := FunctionLocation(m.Port.Type, fn)
	if err != nil {
		return 0, err
	}
	return loc.Decode(m.page(loc.Address, loc.Page)[loc.Offset]), nil
}

func (f *FakeProvider) SetFunction(_ context.Context, port Port, fn Function, value int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpSetFunction]; err != nil {
		return err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return err
	}
	loc, err := FunctionLocation(m.Port.Type, fn)
	if err != nil {
		return err
	}
	page := m.page(loc.Address, loc.Page)
	page[loc.Offset] = loc.Encode(page[loc.Offset], value)
	return nil
}

func (f *FakeProvider) GetMemoryRaw(_ context.Context, port Port, address, page, offset int, data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpGetMemoryRaw]; err != nil {
		return 0, err
	}
	if err := CheckByteRequest(OpGetMemoryRaw, address, page, offset, len(data), len(data)); err != nil {
		return 0, err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return 0, err
	}
	return copy(data, m.page(address, page)[offset:]), nil
}

func (f *FakeProvider) SetMemoryRaw(_ context.Context, port Port, address, page, offset int, data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpSetMemoryRaw]; err != nil {
		return 0, err
	}
	if err := CheckByteRequest(OpSetMemoryRaw, address, page, offset, len(data), len(data)); err != nil {
		return 0, err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return 0, err
	}
	return copy(m.page(address, page)[offset:], data), nil
}

func (f *FakeProvider) GetMemoryRaw16(_ context.Context, port Port, offset int, data []uint16) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpGetMemoryRaw16]; err != nil {
		return 0, err
	}
	if err := CheckWordRequest(OpGetMemoryRaw16, offset, len(data), len(data)); err != nil {
		return 0, err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return 0, err
	}
	return copy(data, m.words()[offset:]), nil
}

func (f *FakeProvider) SetMemoryRaw16(_ context.Context, port Port, offset int, data []uint16) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpSetMemoryRaw16]; err != nil {
		return 0, err
	}
	if err := CheckWordRequest(OpSetMemoryRaw16, offset, len(data), len(data)); err != nil {
		return 0, err
	}
	m, err := f.module(port.Num)
	if err != nil {
		return 0, err
	}
	return copy(m.words()[offset:], data), nil
}

func (f *FakeProvider) module(num int) (*FakeModule, error) {
	for _, m := range f.modules {
		if m.Port.Num == num {
			return m, nil
		}
	}
	return nil, fmt.Errorf("port %d: %w", num, ErrPortNotFound)
}

func (m *FakeModule) page(address, page int) *[PageSize]byte {
	key := PageKey{Address: address, Page: page}
	p, ok := m.Pages[key]
	if !ok {
		p = &[PageSize]byte{}
		m.Pages[key] = p
	}
	return p
}

func (m *FakeModule) words() []uint16 {
	if m.Words == nil {
		m.Words = make([]uint16, WordSpaceSize)
	}
	return m.Words
}

// seedIdentity fills the serial ID fields so key reads return something meaningful.
func (m *FakeModule) seedIdentity() {
	keys, err := KeyMap(m.Port.Type)
	if err != nil {
		return
	}
	values := map[string]string{
		"VENDOR_NAME": "IRONCORE",
		"VENDOR_PN":   "OOM-FAKE-" + m.Port.Type.String(),
		"VENDOR_REV":  "A0",
		"VENDOR_SN":   fmt.Sprintf("FAKE%06d", m.Port.Num),
		"DATE_CODE":   "250101",
	}
	for _, k := range keys {
		page := m.page(k.Address, k.Page)
		switch k.Kind {
		case KeyInt:
			page[k.Offset] = byte(m.Port.Type)
		case KeyHex:
			copy(page[k.Offset:k.Offset+k.Length], []byte{0x00, 0x90, 0x65})
		case KeyString:
			copy(page[k.Offset:k.Offset+k.Length], k.encodeString(values[k.Name]))
		}
	}
	if m.Port.Type.IsQSFPFamily() {
		m.page(AddressA0, 0)[0] = byte(m.Port.Type)
	}
}
