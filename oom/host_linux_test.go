// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package oom

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubEeprom struct {
	dumps  map[string][]byte
	closed bool
}

func (s *stubEeprom) ModuleEeprom(intf string) ([]byte, error) {
	data, ok := s.dumps[intf]
	if !ok {
		return nil, errors.New("no module")
	}
	return data, nil
}

func (s *stubEeprom) Close() {
	s.closed = true
}

var _ = Describe("HostProvider", func() {
	var (
		eeprom *stubEeprom
		client *Client
		host   *HostProvider
	)

	BeforeEach(func() {
		sfp := make([]byte, 512)
		sfp[0] = byte(PortTypeSFP)
		copy(sfp[20:], "ACME            ")
		sfp[PageSize+110] = 1 << 6

		qsfp := make([]byte, 640)
		qsfp[0] = byte(PortTypeQSFP28)
		qsfp[128] = byte(PortTypeQSFP28)
		qsfp[PageSize+128+5] = 0x5A

		eeprom = &stubEeprom{dumps: map[string][]byte{"eth0": sfp, "eth1": qsfp}}
		host = newHostProvider(GinkgoLogr, eeprom, []string{"eth0", "eth1", "eth2"})
		client = NewClient(GinkgoLogr, host)
	})

	It("should report every NIC as a port and detect the module type", func(ctx SpecContext) {
		ports, err := client.Ports(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ports).To(HaveLen(3))
		Expect(ports[0].Type).To(Equal(PortTypeSFP))
		Expect(ports[1].Type).To(Equal(PortTypeQSFP28))
		Expect(ports[2].Type).To(Equal(PortTypeNotPresent))
	})

	It("should read functions and keys from the module eeprom", func(ctx SpecContext) {
		ports, err := client.Ports(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(client.GetFunction(ctx, ports[0], FunctionTxDisable)).To(Equal(1))
		Expect(GetKeyValue(ctx, client, ports[0], "VENDOR_NAME")).To(Equal("ACME"))
		Expect(GetKeyValue(ctx, client, ports[1], "IDENTIFIER")).To(Equal("17"))
	})

	It("should map QSFP upper pages onto the flat dump", func(ctx SpecContext) {
		buf := make([]byte, 1)
		_, err := client.GetMemoryRaw(ctx, Port{Num: 1, Type: PortTypeQSFP28}, AddressA0, 1, 133, 1, buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf[0]).To(Equal(byte(0x5A)))
	})

	It("should refuse writes and word access", func(ctx SpecContext) {
		port := Port{Num: 0, Type: PortTypeSFP}
		Expect(errors.Is(client.SetFunction(ctx, port, FunctionTxDisable, 1), ErrNotSupported)).To(BeTrue())
		_, err := client.SetMemoryRaw(ctx, port, AddressA2, 0, 0, 1, []byte{1})
		Expect(errors.Is(err, ErrNotSupported)).To(BeTrue())
		_, err = client.GetMemoryRaw16(ctx, port, 0, 1, make([]uint16, 1))
		Expect(errors.Is(err, ErrNotSupported)).To(BeTrue())
	})

	It("should fail for ports without a module and unknown ports", func(ctx SpecContext) {
		_, err := client.GetMemoryRaw(ctx, Port{Num: 2, Type: PortTypeSFP}, AddressA0, 0, 0, 1, make([]byte, 1))
		var accessErr *AccessError
		Expect(errors.As(err, &accessErr)).To(BeTrue())

		_, err = client.GetMemoryRaw(ctx, Port{Num: 9}, AddressA0, 0, 0, 1, make([]byte, 1))
		Expect(errors.Is(err, ErrPortNotFound)).To(BeTrue())
	})

	It("should close the ethtool handle", func() {
		host.Close()
		Expect(eeprom.closed).To(BeTrue())
	})

	DescribeTable("eepromIndex",
		func(t PortType, address, page, offset, expected int, supported bool) {
			idx, err := eepromIndex(t, address, page, offset)
			if !supported {
				Expect(errors.Is(err, ErrNotSupported)).To(BeTrue())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(idx).To(Equal(expected))
		},
		Entry("SFP A0h", PortTypeSFP, AddressA0, 0, 20, 20, true),
		Entry("SFP A2h", PortTypeSFP, AddressA2, 0, 110, 366, true),
		Entry("SFP A2h page 3", PortTypeSFP, AddressA2, 3, 128, 0, false),
		Entry("QSFP page 3 upper", PortTypeQSFP28, AddressA0, 3, 128, 512, true),
		Entry("QSFP page 1 lower", PortTypeQSFP28, AddressA0, 1, 0, 0, false),
		Entry("QSFP A2h", PortTypeQSFP, AddressA2, 0, 0, 0, false),
	)
})
