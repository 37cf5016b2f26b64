// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyKind tells how the bytes of a Key are decoded.
type KeyKind int

const (
	KeyString KeyKind = iota
	KeyHex
	KeyInt
	KeyBit
)

// Key is a named field of a module memory map.
type Key struct {
	Name    string
	Kind    KeyKind
	Address int
	Page    int
	Offset  int
	Length  int
	// Mask selects the bits of a KeyBit field.
	Mask byte
}

// SFF-8472 serial ID fields, A0h lower page.
var sfpKeys = []Key{
	{Name: "IDENTIFIER", Kind: KeyInt, Address: AddressA0, Offset: 0, Length: 1},
	{Name: "VENDOR_NAME", Kind: KeyString, Address: AddressA0, Offset: 20, Length: 16},
	{Name: "VENDOR_OUI", Kind: KeyHex, Address: AddressA0, Offset: 37, Length: 3},
	{Name: "VENDOR_PN", Kind: KeyString, Address: AddressA0, Offset: 40, Length: 16},
	{Name: "VENDOR_REV", Kind: KeyString, Address: AddressA0, Offset: 56, Length: 4},
	{Name: "VENDOR_SN", Kind: KeyString, Address: AddressA0, Offset: 68, Length: 16},
	{Name: "DATE_CODE", Kind: KeyString, Address: AddressA0, Offset: 84, Length: 8},
	{Name: "SOFT_TX_DISABLE_SELECT", Kind: KeyBit, Address: AddressA2, Offset: 110, Length: 1, Mask: 1 << 6},
}

// SFF-8636 serial ID fields, upper page 00h.
var qsfpKeys = []Key{
	{Name: "IDENTIFIER", Kind: KeyInt, Address: AddressA0, Offset: 128, Length: 1},
	{Name: "VENDOR_NAME", Kind: KeyString, Address: AddressA0, Offset: 148, Length: 16},
	{Name: "VENDOR_OUI", Kind: KeyHex, Address: AddressA0, Offset: 165, Length: 3},
	{Name: "VENDOR_PN", Kind: KeyString, Address: AddressA0, Offset: 168, Length: 16},
	{Name: "VENDOR_REV", Kind: KeyString, Address: AddressA0, Offset: 184, Length: 2},
	{Name: "VENDOR_SN", Kind: KeyString, Address: AddressA0, Offset: 196, Length: 16},
	{Name: "DATE_CODE", Kind: KeyString, Address: AddressA0, Offset: 212, Length: 8},
	{Name: "TX_DISABLE", Kind: KeyBit, Address: AddressA0, Offset: 86, Length: 1, Mask: 0x0F},
}

// KeyMap returns the keys known for the port type.
func KeyMap(t PortType) ([]Key, error) {
	switch {
	case t.IsSFPFamily():
		return sfpKeys, nil
	case t.IsQSFPFamily():
		return qsfpKeys, nil
	}
	return nil, fmt.Errorf("no key map for port type %s: %w", t, ErrNotSupported)
}

// LookupKey finds a key of the port type by name, case insensitive.
func LookupKey(t PortType, name string) (Key, error) {
	keys, err := KeyMap(t)
	if err != nil {
		return Key{}, err
	}
	for _, k := range keys {
		if strings.EqualFold(k.Name, name) {
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("unknown key %q for port type %s", name, t)
}

// KeyNames returns the sorted key names of the port type.
func KeyNames(t PortType) []string {
	keys, err := KeyMap(t)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// GetKeyValue reads and decodes a named key of a port.
func GetKeyValue(ctx context.Context, c *Client, port Port, name string) (string, error) {
	key, err := LookupKey(port.Type, name)
	if err != nil {
		return "", err
	}
	buf := make([]byte, key.Length)
	if _, err := c.GetMemoryRaw(ctx, port, key.Address, key.Page, key.Offset, key.Length, buf); err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key.Name, err)
	}
	return key.Decode(buf), nil
}

// SetKeyValue writes a bit key of a port with a read-modify-write of its byte.
func SetKeyValue(ctx context.Context, c *Client, port Port, name string, value int) error {
	key, err := LookupKey(port.Type, name)
	if err != nil {
		return err
	}
	if key.Kind != KeyBit {
		return fmt.Errorf("key %s is not writable", key.Name)
	}
	buf := make([]byte, 1)
	if _, err := c.GetMemoryRaw(ctx, port, key.Address, key.Page, key.Offset, 1, buf); err != nil {
		return fmt.Errorf("failed to read key %s: %w", key.Name, err)
	}
	loc := FieldLocation{Address: key.Address, Page: key.Page, Offset: key.Offset, Mask: key.Mask}
	buf[0] = loc.Encode(buf[0], value)
	if _, err := c.SetMemoryRaw(ctx, port, key.Address, key.Page, key.Offset, 1, buf); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key.Name, err)
	}
	return nil
}

// Decode renders raw key bytes according to the key kind.
func (k Key) Decode(data []byte) string {
	switch k.Kind {
	case KeyHex:
		return hex.EncodeToString(data)
	case KeyInt:
		v := 0
		for _, b := range data {
			v = v<<8 | int(b)
		}
		return strconv.Itoa(v)
	case KeyBit:
		if len(data) > 0 && data[0]&k.Mask != 0 {
			return "1"
		}
		return "0"
	default:
		return strings.TrimRight(string(data), " \x00")
	}
}

// encodeString pads s with spaces to the key length, as SFF ASCII fields are.
func (k Key) encodeString(s string) []byte {
	out := make([]byte, k.Length)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}
