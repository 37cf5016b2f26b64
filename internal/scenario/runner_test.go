// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package scenario_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ironcore-dev/oom-southbound/internal/scenario"
	"github.com/ironcore-dev/oom-southbound/oom"
)

func intPtr(v int) *int {
	return &v
}

var _ = Describe("Runner", func() {
	var (
		fake   *oom.FakeProvider
		runner *scenario.Runner
	)

	BeforeEach(func() {
		fake = oom.NewFakeProvider()
		runner = scenario.NewRunner(GinkgoLogr, oom.NewClient(GinkgoLogr, fake))
	})

	Describe("the default scenario", func() {
		It("should validate all ports of the fake provider", func(ctx SpecContext) {
			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Aborted).To(BeFalse())
			Expect(result.Failed()).To(BeFalse())
			Expect(result.Counts()).To(Equal(scenario.Counts{Passed: 8}))

			By("reporting the port count")
			step, ok := result.Step("Max Ports")
			Expect(ok).To(BeTrue())
			Expect(step.Lines).To(Equal([]string{"Max Ports: 4"}))

			By("listing the ports")
			step, _ = result.Step("Port list")
			Expect(step.Lines).To(Equal([]string{
				"    Port#  type    seq   flags",
				"      0     13      1      0",
				"      1      3      2      0",
				"      2      3      3      0",
				"      3     17      4      0",
			}))

			By("alternating transmit disable by port index")
			step, _ = result.Step("Toggle TX_DISABLE")
			Expect(step.Lines).To(Equal([]string{
				"Port: 0, TX_DISABLE value: 1",
				"Port: 1, TX_DISABLE value: 0",
				"Port: 2, TX_DISABLE value: 1",
				"Port: 3, TX_DISABLE value: 0",
			}))

			By("reading back the byte pattern")
			step, _ = result.Step("1st and last bytes")
			Expect(step.Lines).To(Equal([]string{"1st and last bytes (should be 0, 127): 0, 127"}))
			Expect(step.Buffer).NotTo(BeEmpty())

			By("dumping page 4 of the SFP port")
			step, _ = result.Step("Dump page 4")
			Expect(step.Lines).To(HaveLen(9))
			Expect(step.Lines[0]).To(Equal("contents of port 1, page 4:"))

			By("reading back the shifted word window")
			step, _ = result.Step("1st, last words")
			Expect(step.Lines).To(Equal([]string{"1st, last words (should be 1001, 1255): 1001, 1255"}))
		})

		It("should hand out a distinct handle for every buffer", func(ctx SpecContext) {
			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			handles := map[string]bool{}
			for _, s := range result.Steps {
				if s.Buffer == "" {
					continue
				}
				Expect(handles).NotTo(HaveKey(s.Buffer))
				handles[s.Buffer] = true
			}
			Expect(handles).To(HaveLen(5))
			Expect(result.ID).NotTo(BeEmpty())
		})

		It("should skip the dump when port 1 is not an SFP module", func(ctx SpecContext) {
			ports := oom.DefaultFakePorts()
			ports[1].Type = oom.PortTypeQSFP28
			fake.SetPorts(ports...)

			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			step, _ := result.Step("Dump page 4")
			Expect(step.Status).To(Equal(scenario.StatusSkipped))
			Expect(result.Failed()).To(BeFalse())
		})

		It("should record failures and keep going", func(ctx SpecContext) {
			fake.InjectFailure(oom.OpSetMemoryRaw, errors.New("write protected"))

			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Aborted).To(BeFalse())
			Expect(result.Steps).To(HaveLen(8))

			step, _ := result.Step("Write pattern")
			Expect(step.Status).To(Equal(scenario.StatusErrored))
			Expect(step.Error).To(ContainSubstring("write protected"))

			By("still reading back the untouched page")
			step, _ = result.Step("1st and last bytes")
			Expect(step.Status).To(Equal(scenario.StatusFailed))
			Expect(step.Lines).To(Equal([]string{"1st and last bytes (should be 0, 127): 0, 0"}))

			step, _ = result.Step("1st, last words")
			Expect(step.Status).To(Equal(scenario.StatusPassed))
		})

		It("should abort when writing words fails", func(ctx SpecContext) {
			fake.InjectFailure(oom.OpSetMemoryRaw16, errors.New("bus hang"))

			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Aborted).To(BeTrue())
			Expect(result.Steps).To(HaveLen(7))
			Expect(result.Steps[6].Status).To(Equal(scenario.StatusErrored))
			_, ok := result.Step("1st, last words")
			Expect(ok).To(BeFalse())
		})

		It("should error every step when the ports can not be counted", func(ctx SpecContext) {
			fake.InjectFailure(oom.OpMaxPorts, errors.New("no bus"))
			result, err := runner.Run(ctx, scenario.Default())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Counts().Passed).To(BeZero())
			Expect(result.Aborted).To(BeTrue())
		})
	})

	It("should fail steps whose expectations do not hold", func(ctx SpecContext) {
		result, err := runner.Run(ctx, &scenario.Scenario{Name: "expectations", Steps: []scenario.Step{
			{Action: scenario.ActionMaxPorts, ExpectValue: intPtr(8)},
			{Action: scenario.ActionReadBytes, Port: 1, Address: oom.AddressA0, Length: 4, Expect: map[int]int{0: 3, 10: 1}},
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Steps[0].Status).To(Equal(scenario.StatusFailed))
		Expect(result.Steps[0].Checks).To(Equal([]scenario.Check{{Name: "max ports", Expected: "8", Actual: "4"}}))

		Expect(result.Steps[1].Status).To(Equal(scenario.StatusFailed))
		Expect(result.Steps[1].Checks[0].Passed).To(BeTrue())
		Expect(result.Steps[1].Checks[1].Actual).To(Equal("missing"))
	})

	It("should evaluate assert expressions", func(ctx SpecContext) {
		result, err := runner.Run(ctx, &scenario.Scenario{Name: "asserts", Steps: []scenario.Step{
			{Name: "count", Action: scenario.ActionListPorts, Assert: `count == 4 && ports[1].type == "SFP"`},
			{Name: "pattern", Action: scenario.ActionWriteBytes, Port: 2, Address: oom.AddressA2, Page: 1,
				Length: 16, Pattern: &scenario.Pattern{Base: 10, Step: 2}, Assert: "data[15] == 40 && port.num == 2"},
			{Name: "wrong", Action: scenario.ActionGetFunction, Port: 0, Function: "TX_DISABLE", Assert: "value == 1"},
			{Name: "broken", Action: scenario.ActionMaxPorts, Assert: "count +"},
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Steps[0].Status).To(Equal(scenario.StatusPassed))
		Expect(result.Steps[1].Status).To(Equal(scenario.StatusPassed))
		Expect(result.Steps[2].Status).To(Equal(scenario.StatusFailed))
		Expect(result.Steps[3].Status).To(Equal(scenario.StatusErrored))
		Expect(result.Steps[3].Error).To(ContainSubstring("invalid assert"))
	})

	It("should report out of range requests per step", func(ctx SpecContext) {
		result, err := runner.Run(ctx, &scenario.Scenario{Name: "ranges", Steps: []scenario.Step{
			{Name: "too long", Action: scenario.ActionReadBytes, Port: 1, Address: oom.AddressA2, Length: 64, BufferSize: 32},
			{Name: "crossing", Action: scenario.ActionWriteWords, Port: 3, Offset: oom.WordSpaceSize - 1, Length: 2},
			{Name: "no such port", Action: scenario.ActionReadBytes, Port: 9, Address: oom.AddressA2, Length: 1},
		}})
		Expect(err).NotTo(HaveOccurred())
		for _, s := range result.Steps {
			Expect(s.Status).To(Equal(scenario.StatusErrored))
		}
		Expect(result.Steps[0].Error).To(ContainSubstring("length exceeds buffer size"))
		Expect(result.Steps[2].Error).To(ContainSubstring("port index 9 out of range"))
	})

	It("should set functions and read identity keys", func(ctx SpecContext) {
		result, err := runner.Run(ctx, &scenario.Scenario{Name: "identity", Steps: []scenario.Step{
			{Action: scenario.ActionSetFunction, Port: 2, Function: "TX_DISABLE", Value: 1},
			{Action: scenario.ActionGetFunction, Port: 2, Function: "TX_DISABLE", ExpectValue: intPtr(1)},
			{Action: scenario.ActionReadKeys, Port: 2, Keys: []string{"VENDOR_NAME", "VENDOR_SN"}},
		}})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Failed()).To(BeFalse())
		Expect(result.Steps[1].Lines).To(Equal([]string{"Port: 2, TX_DISABLE value: 1"}))
		Expect(result.Steps[2].Lines).To(Equal([]string{"VENDOR_NAME: IRONCORE", "VENDOR_SN: FAKE000002"}))
	})

	It("should stop when the context is done", func(ctx SpecContext) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		result, err := runner.Run(cancelled, scenario.Default())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result.Aborted).To(BeTrue())
		Expect(result.Steps).To(BeEmpty())
	})
})

var _ = Describe("Loading scenarios", func() {
	It("should load a YAML scenario", func() {
		path := filepath.Join(GinkgoT().TempDir(), "scenario.yaml")
		Expect(os.WriteFile(path, []byte(`
name: sfp-only
steps:
- action: listPorts
- name: read vendor
  action: readKeys
  port: 1
  keys: [VENDOR_NAME]
  when:
    portType: SFP
- action: readBytes
  port: 1
  address: 0xA2
  page: 3
  length: 2
  expect:
    0: 0
    1: 0
`), 0o600)).To(Succeed())

		s, err := scenario.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("sfp-only"))
		Expect(s.Steps).To(HaveLen(3))
		Expect(s.Steps[1].When.PortType).To(Equal("SFP"))
		Expect(s.Steps[2].Address).To(Equal(oom.AddressA2))
		Expect(s.Steps[2].Expect).To(Equal(map[int]int{0: 0, 1: 0}))
	})

	It("should load a JSON scenario", func() {
		s, err := scenario.Parse([]byte(`{"name":"json","steps":[{"action":"maxPorts","expectValue":4}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(*s.Steps[0].ExpectValue).To(Equal(4))
	})

	DescribeTable("should reject invalid scenarios",
		func(doc, message string) {
			_, err := scenario.Parse([]byte(doc))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("no steps", `name: empty`, "has no steps"),
		Entry("unknown action", "steps:\n- action: reboot", "unknown action"),
		Entry("unknown function", "steps:\n- action: getFunction\n  function: LASER", "unknown function"),
		Entry("unknown field", "steps:\n- action: maxPorts\n  colour: red", "unknown field"),
		Entry("no keys", "steps:\n- action: readKeys", "no keys given"),
		Entry("unknown port type", "steps:\n- action: maxPorts\n  when:\n    portType: FLOPPY", "unknown port type"),
	)

	It("should fail on a missing file", func() {
		_, err := scenario.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("failed to read scenario")))
	})
})
