// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"context"
	"fmt"
	"strings"
)

const (
	// PageSize is the size in bytes of one addressable page of a device address.
	PageSize = 256

	// WordSpaceSize is the number of 16 bit words addressable through the word variants.
	WordSpaceSize = 0x10000

	// MaxPortCount bounds the port list a client is willing to allocate.
	MaxPortCount = 4096

	// AddressA0 is the serial ID address of SFP and QSFP modules.
	AddressA0 = 0xA0
	// AddressA2 is the diagnostics address of SFP modules.
	AddressA2 = 0xA2
)

// Provider defines the Southbound API of a port access library.
// Implementations must not keep references to the passed slices after returning.
type Provider interface {
	// MaxPorts returns the number of ports the provider can report.
	MaxPorts(ctx context.Context) (int, error)

	// GetPortList fills ports and returns the number of entries written.
	GetPortList(ctx context.Context, ports []Port) (int, error)

	// GetFunction reads the value of a control function of a port.
	GetFunction(ctx context.Context, port Port, fn Function) (int, error)

	// SetFunction writes the value of a control function of a port.
	SetFunction(ctx context.Context, port Port, fn Function, value int) error

	// GetMemoryRaw reads len(data) bytes at offset of the given device address and page.
	GetMemoryRaw(ctx context.Context, port Port, address, page, offset int, data []byte) (int, error)

	// SetMemoryRaw writes data at offset of the given device address and page.
	SetMemoryRaw(ctx context.Context, port Port, address, page, offset int, data []byte) (int, error)

	// GetMemoryRaw16 reads len(data) words starting at the word offset.
	GetMemoryRaw16(ctx context.Context, port Port, offset int, data []uint16) (int, error)

	// SetMemoryRaw16 writes data starting at the word offset.
	SetMemoryRaw16(ctx context.Context, port Port, offset int, data []uint16) (int, error)
}

// Port is one transceiver slot as reported by a Provider.
type Port struct {
	Num    int      `json:"portNum"`
	Type   PortType `json:"portType"`
	SeqNum int      `json:"seqNum"`
	Flags  uint32   `json:"portFlags"`
}

func (p Port) String() string {
	return fmt.Sprintf("port %d (%s)", p.Num, p.Type)
}

// PortType follows the SFF-8024 identifier values. CFP types are offset by 0x100
// since their values overlap with the i2c module identifiers.
type PortType int

const (
	PortTypeUnknown       PortType = 0x00
	PortTypeGBIC          PortType = 0x01
	PortTypeSoldered      PortType = 0x02
	PortTypeSFP           PortType = 0x03
	PortTypeXBI           PortType = 0x04
	PortTypeXENPAK        PortType = 0x05
	PortTypeXFP           PortType = 0x06
	PortTypeXFF           PortType = 0x07
	PortTypeXFPE          PortType = 0x08
	PortTypeXPAK          PortType = 0x09
	PortTypeX2            PortType = 0x0A
	PortTypeDWDMSFP       PortType = 0x0B
	PortTypeQSFP          PortType = 0x0C
	PortTypeQSFPPlus      PortType = 0x0D
	PortTypeCXP           PortType = 0x0E
	PortTypeSMMHD4X       PortType = 0x0F
	PortTypeSMMHD8X       PortType = 0x10
	PortTypeQSFP28        PortType = 0x11
	PortTypeCXP2          PortType = 0x12
	PortTypeCDFP          PortType = 0x13
	PortTypeSMMHD4XFanout PortType = 0x14
	PortTypeSMMHD8XFanout PortType = 0x15
	PortTypeCDFPStyle3    PortType = 0x16
	PortTypeMicroQSFP     PortType = 0x17
	PortTypeCFP           PortType = 0x10E
	PortType168Pin5x7     PortType = 0x110
	PortTypeCFP2          PortType = 0x111
	PortTypeCFP4          PortType = 0x112
	PortType168Pin4x5     PortType = 0x113
	PortTypeCFP2ACO       PortType = 0x114
	PortTypeInvalid       PortType = -1
	PortTypeNotPresent    PortType = -2
)

var portTypeNames = map[PortType]string{
	PortTypeUnknown:       "UNKNOWN",
	PortTypeGBIC:          "GBIC",
	PortTypeSoldered:      "SOLDERED",
	PortTypeSFP:           "SFP",
	PortTypeXBI:           "XBI",
	PortTypeXENPAK:        "XENPAK",
	PortTypeXFP:           "XFP",
	PortTypeXFF:           "XFF",
	PortTypeXFPE:          "XFP_E",
	PortTypeXPAK:          "XPAK",
	PortTypeX2:            "X2",
	PortTypeDWDMSFP:       "DWDM_SFP",
	PortTypeQSFP:          "QSFP",
	PortTypeQSFPPlus:      "QSFP_PLUS",
	PortTypeCXP:           "CXP",
	PortTypeSMMHD4X:       "SMM_HD_4X",
	PortTypeSMMHD8X:       "SMM_HD_8X",
	PortTypeQSFP28:        "QSFP28",
	PortTypeCXP2:          "CXP2",
	PortTypeCDFP:          "CDFP",
	PortTypeSMMHD4XFanout: "SMM_HD_4X_FANOUT",
	PortTypeSMMHD8XFanout: "SMM_HD_8X_FANOUT",
	PortTypeCDFPStyle3:    "CDFP_STYLE_3",
	PortTypeMicroQSFP:     "MICRO_QSFP",
	PortTypeCFP:           "CFP",
	PortType168Pin5x7:     "168_PIN_5X7",
	PortTypeCFP2:          "CFP2",
	PortTypeCFP4:          "CFP4",
	PortType168Pin4x5:     "168_PIN_4X5",
	PortTypeCFP2ACO:       "CFP2_ACO",
	PortTypeInvalid:       "INVALID",
	PortTypeNotPresent:    "NOT_PRESENT",
}

func (t PortType) String() string {
	if name, ok := portTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PortType(%#x)", int(t))
}

// ParsePortType resolves a port type by its name, case insensitive.
func ParsePortType(name string) (PortType, error) {
	for t, n := range portTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return PortTypeInvalid, fmt.Errorf("unknown port type %q", name)
}

// IsSFPFamily reports whether the module uses the SFF-8472 memory map.
func (t PortType) IsSFPFamily() bool {
	return t == PortTypeSFP || t == PortTypeDWDMSFP
}

// IsQSFPFamily reports whether the module uses the SFF-8636 memory map.
func (t PortType) IsQSFPFamily() bool {
	return t == PortTypeQSFP || t == PortTypeQSFPPlus || t == PortTypeQSFP28 || t == PortTypeMicroQSFP
}

// Function identifies a control function of a port.
type Function int

const (
	FunctionTxDisable Function = iota
	FunctionRateSelect
)

var functionNames = map[Function]string{
	FunctionTxDisable:  "TX_DISABLE",
	FunctionRateSelect: "RATE_SELECT",
}

func (f Function) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Function(%d)", int(f))
}

// ParseFunction resolves a function by its name, case insensitive.
func ParseFunction(name string) (Function, error) {
	for f, n := range functionNames {
		if strings.EqualFold(n, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown function %q", name)
}
