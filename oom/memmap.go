// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import "fmt"

// FieldLocation addresses bits of a single byte in a module memory map.
type FieldLocation struct {
	Address int
	Page    int
	Offset  int
	Mask    byte
}

// FunctionLocation returns where a control function lives in the memory map of the port type.
func FunctionLocation(t PortType, fn Function) (FieldLocation, error) {
	switch {
	case t.IsSFPFamily():
		switch fn {
		case FunctionTxDisable:
			// SFF-8472 status/control byte 110, soft TX disable select
			return FieldLocation{Address: AddressA2, Page: 0, Offset: 110, Mask: 1 << 6}, nil
		case FunctionRateSelect:
			// SFF-8472 status/control byte 110, soft RS(0) select
			return FieldLocation{Address: AddressA2, Page: 0, Offset: 110, Mask: 1 << 3}, nil
		}
	case t.IsQSFPFamily():
		if fn == FunctionTxDisable {
			// SFF-8636 byte 86, TX disable of channels 1-4
			return FieldLocation{Address: AddressA0, Page: 0, Offset: 86, Mask: 0x0F}, nil
		}
	}
	return FieldLocation{}, fmt.Errorf("%s on %s: %w", fn, t, ErrNotSupported)
}

// Decode returns 1 if any of the masked bits is set in b.
func (l FieldLocation) Decode(b byte) int {
	if b&l.Mask != 0 {
		return 1
	}
	return 0
}

// Encode sets or clears the masked bits of b according to value.
func (l FieldLocation) Encode(b byte, value int) byte {
	if value == 0 {
		return b &^ l.Mask
	}
	return b | l.Mask
}
