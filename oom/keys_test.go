// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package oom

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Keys", func() {
	var (
		client *Client
		sfp    Port
		qsfp   Port
	)

	BeforeEach(func(ctx SpecContext) {
		client = NewClient(GinkgoLogr, NewFakeProvider())
		ports, err := client.Ports(ctx)
		Expect(err).NotTo(HaveOccurred())
		qsfp, sfp = ports[0], ports[1]
	})

	It("should decode the serial ID of an SFP module", func(ctx SpecContext) {
		Expect(GetKeyValue(ctx, client, sfp, "VENDOR_NAME")).To(Equal("IRONCORE"))
		Expect(GetKeyValue(ctx, client, sfp, "vendor_pn")).To(Equal("OOM-FAKE-SFP"))
		Expect(GetKeyValue(ctx, client, sfp, "VENDOR_SN")).To(Equal("FAKE000001"))
		Expect(GetKeyValue(ctx, client, sfp, "VENDOR_OUI")).To(Equal("009065"))
		Expect(GetKeyValue(ctx, client, sfp, "IDENTIFIER")).To(Equal("3"))
	})

	It("should decode the serial ID of a QSFP module from the upper page", func(ctx SpecContext) {
		Expect(GetKeyValue(ctx, client, qsfp, "VENDOR_PN")).To(Equal("OOM-FAKE-QSFP_PLUS"))
		Expect(GetKeyValue(ctx, client, qsfp, "IDENTIFIER")).To(Equal("13"))
	})

	It("should follow transmit disable through its bit key", func(ctx SpecContext) {
		Expect(GetKeyValue(ctx, client, sfp, "SOFT_TX_DISABLE_SELECT")).To(Equal("0"))
		Expect(client.SetFunction(ctx, sfp, FunctionTxDisable, 1)).To(Succeed())
		Expect(GetKeyValue(ctx, client, sfp, "SOFT_TX_DISABLE_SELECT")).To(Equal("1"))

		Expect(SetKeyValue(ctx, client, qsfp, "TX_DISABLE", 1)).To(Succeed())
		Expect(client.GetFunction(ctx, qsfp, FunctionTxDisable)).To(Equal(1))
	})

	It("should refuse to write non bit keys", func(ctx SpecContext) {
		Expect(SetKeyValue(ctx, client, sfp, "VENDOR_NAME", 1)).To(MatchError(ContainSubstring("not writable")))
	})

	It("should fail for unknown keys and port types without a key map", func(ctx SpecContext) {
		_, err := GetKeyValue(ctx, client, sfp, "NO_SUCH_KEY")
		Expect(err).To(MatchError(ContainSubstring("unknown key")))

		_, err = KeyMap(PortTypeCFP)
		Expect(errors.Is(err, ErrNotSupported)).To(BeTrue())
		Expect(KeyNames(PortTypeCFP)).To(BeEmpty())
	})

	It("should list key names sorted", func() {
		names := KeyNames(PortTypeSFP)
		Expect(names).To(HaveLen(8))
		Expect(names[0]).To(Equal("DATE_CODE"))
		Expect(names).To(ContainElement("SOFT_TX_DISABLE_SELECT"))
	})
})

var _ = Describe("Types", func() {
	It("should resolve port types and functions by name", func() {
		Expect(ParsePortType("qsfp28")).To(Equal(PortTypeQSFP28))
		Expect(ParsePortType("CFP2_ACO")).To(Equal(PortTypeCFP2ACO))
		_, err := ParsePortType("floppy")
		Expect(err).To(HaveOccurred())

		Expect(ParseFunction("tx_disable")).To(Equal(FunctionTxDisable))
		Expect(FunctionRateSelect.String()).To(Equal("RATE_SELECT"))
	})

	It("should render unnamed port types by value", func() {
		Expect(PortType(0x42).String()).To(Equal("PortType(0x42)"))
		Expect(PortTypeNotPresent.String()).To(Equal("NOT_PRESENT"))
	})

	It("should group module families by memory map", func() {
		Expect(PortTypeDWDMSFP.IsSFPFamily()).To(BeTrue())
		Expect(PortTypeMicroQSFP.IsQSFPFamily()).To(BeTrue())
		Expect(PortTypeCFP.IsSFPFamily() || PortTypeCFP.IsQSFPFamily()).To(BeFalse())
	})

	It("should encode and decode masked function bits", func() {
		loc, err := FunctionLocation(PortTypeQSFP28, FunctionTxDisable)
		Expect(err).NotTo(HaveOccurred())
		Expect(loc.Encode(0xF0, 1)).To(Equal(byte(0xFF)))
		Expect(loc.Encode(0xFF, 0)).To(Equal(byte(0xF0)))
		Expect(loc.Decode(0x04)).To(Equal(1))
		Expect(loc.Decode(0xF0)).To(Equal(0))
	})
})
