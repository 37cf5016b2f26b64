// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/oom-southbound/oom"
)

// Action is the operation a Step performs.
type Action string

const (
	ActionMaxPorts       Action = "maxPorts"
	ActionListPorts      Action = "listPorts"
	ActionGetFunction    Action = "getFunction"
	ActionSetFunction    Action = "setFunction"
	ActionToggleFunction Action = "toggleFunction"
	ActionWriteBytes     Action = "writeBytes"
	ActionReadBytes      Action = "readBytes"
	ActionDumpBytes      Action = "dumpBytes"
	ActionWriteWords     Action = "writeWords"
	ActionReadWords      Action = "readWords"
	ActionReadKeys       Action = "readKeys"
)

var actions = map[Action]bool{
	ActionMaxPorts:       true,
	ActionListPorts:      true,
	ActionGetFunction:    true,
	ActionSetFunction:    true,
	ActionToggleFunction: true,
	ActionWriteBytes:     true,
	ActionReadBytes:      true,
	ActionDumpBytes:      true,
	ActionWriteWords:     true,
	ActionReadWords:      true,
	ActionReadKeys:       true,
}

// Scenario is an ordered list of steps run against one client.
type Scenario struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Step is a single operation of a Scenario.
type Step struct {
	// Name labels the step in reports. Defaults to the action.
	Name   string `json:"name,omitempty"`
	Action Action `json:"action"`

	// Port is an index into the enumerated port list.
	Port     int    `json:"port,omitempty"`
	Function string `json:"function,omitempty"`
	// Value is written by setFunction.
	Value int `json:"value,omitempty"`
	// Values are cycled over the port indexes by toggleFunction.
	Values []int `json:"values,omitempty"`

	Address int `json:"address,omitempty"`
	Page    int `json:"page,omitempty"`
	// Offset is a byte offset into the page, or a word offset for word actions.
	Offset int `json:"offset,omitempty"`
	// Length is the number of bytes or words transferred.
	Length int `json:"length,omitempty"`
	// BufferSize is the size of the buffer handed to the client. Defaults to Length.
	BufferSize int      `json:"bufferSize,omitempty"`
	Pattern    *Pattern `json:"pattern,omitempty"`

	// Expect maps buffer indexes to their expected values.
	Expect map[int]int `json:"expect,omitempty"`
	// ExpectValue is the expected port count or function value.
	ExpectValue *int `json:"expectValue,omitempty"`
	// Assert is an expression over data, count, value, port and ports that must yield true.
	Assert string `json:"assert,omitempty"`

	When         *Condition `json:"when,omitempty"`
	AbortOnError bool       `json:"abortOnError,omitempty"`
	Keys         []string   `json:"keys,omitempty"`
}

// Pattern fills write buffers with Base + Step*i.
type Pattern struct {
	Base int `json:"base"`
	Step int `json:"step"`
}

// Condition guards a step. A step whose condition does not hold is skipped.
type Condition struct {
	// PortType is the name of the type the step's port must have.
	PortType string `json:"portType,omitempty"`
}

// Value returns the i-th element of the pattern.
func (p *Pattern) Value(i int) int {
	if p == nil {
		return i
	}
	return p.Base + p.Step*i
}

func (s Step) label() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Action)
}

func (s Step) bufferSize() int {
	if s.BufferSize > 0 {
		return s.BufferSize
	}
	return s.Length
}

// Validate checks that every step names a known action and its required fields.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if !actions[step.Action] {
			return fmt.Errorf("step %d (%s): unknown action %q", i, step.label(), step.Action)
		}
		switch step.Action {
		case ActionGetFunction, ActionSetFunction, ActionToggleFunction:
			if _, err := oom.ParseFunction(step.Function); err != nil {
				return fmt.Errorf("step %d (%s): %w", i, step.label(), err)
			}
		case ActionReadKeys:
			if len(step.Keys) == 0 {
				return fmt.Errorf("step %d (%s): no keys given", i, step.label())
			}
		}
		if step.Port < 0 {
			return fmt.Errorf("step %d (%s): negative port index", i, step.label())
		}
		if step.When != nil && step.When.PortType != "" {
			if _, err := oom.ParsePortType(step.When.PortType); err != nil {
				return fmt.Errorf("step %d (%s): %w", i, step.label(), err)
			}
		}
	}
	return nil
}

// Parse decodes a YAML or JSON scenario.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.UnmarshalStrict(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads a YAML or JSON scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in port access validation sequence.
func Default() *Scenario {
	return &Scenario{
		Name: "southbound-validation",
		Steps: []Step{
			{Name: "Max Ports", Action: ActionMaxPorts},
			{Name: "Port list", Action: ActionListPorts},
			{
				Name:     "Toggle TX_DISABLE",
				Action:   ActionToggleFunction,
				Function: oom.FunctionTxDisable.String(),
				Values:   []int{1, 0},
			},
			{
				Name:    "Write pattern",
				Action:  ActionWriteBytes,
				Port:    1,
				Address: oom.AddressA2,
				Page:    3,
				Offset:  128,
				Length:  128,
				Pattern: &Pattern{Base: 0, Step: 1},
			},
			{
				Name:    "1st and last bytes",
				Action:  ActionReadBytes,
				Port:    1,
				Address: oom.AddressA2,
				Page:    3,
				Offset:  128,
				Length:  128,
				Expect:  map[int]int{0: 0, 127: 127},
			},
			{
				Name:    "Dump page 4",
				Action:  ActionDumpBytes,
				Port:    1,
				Address: oom.AddressA2,
				Page:    4,
				Offset:  0,
				Length:  128,
				When:    &Condition{PortType: oom.PortTypeSFP.String()},
			},
			{
				Name:         "Write words",
				Action:       ActionWriteWords,
				Port:         3,
				Offset:       0x8A00,
				Length:       256,
				Pattern:      &Pattern{Base: 1000, Step: 1},
				AbortOnError: true,
			},
			{
				Name:   "1st, last words",
				Action: ActionReadWords,
				Port:   3,
				Offset: 0x8A01,
				Length: 255,
				Expect: map[int]int{0: 1001, 254: 1255},
			},
		},
	}
}
