// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/ironcore-dev/oom-southbound/internal/hexdump"
	"github.com/ironcore-dev/oom-southbound/oom"
)

var errSkipped = errors.New("skipped")

// Runner executes scenarios against a client, strictly one step after the other.
type Runner struct {
	client  *oom.Client
	log     logr.Logger
	asserts *assertions
}

// NewRunner creates a new Runner for the given client.
func NewRunner(log logr.Logger, client *oom.Client) *Runner {
	return &Runner{
		client:  client,
		log:     log,
		asserts: newAssertions(),
	}
}

// state carries what earlier steps learned about the ports.
type state struct {
	maxPorts int
	counted  bool
	ports    []oom.Port
	listed   bool
}

// Run executes all steps of s. A failing step is recorded and the run goes on,
// unless the step is marked abortOnError.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	result := &Result{
		ID:        uuid.NewString(),
		Scenario:  s.Name,
		StartedAt: time.Now(),
	}
	log := r.log.WithValues("scenario", s.Name, "run", result.ID)
	log.Info("Starting scenario", "steps", len(s.Steps))

	st := &state{}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			result.Aborted = true
			result.Duration = time.Since(result.StartedAt)
			return result, fmt.Errorf("scenario %q interrupted: %w", s.Name, err)
		}
		res := r.runStep(ctx, st, step)
		result.Steps = append(result.Steps, res)
		log.V(1).Info("Ran step", "index", i, "step", res.Name, "status", res.Status)

		if step.AbortOnError && (res.Status == StatusFailed || res.Status == StatusErrored) {
			log.Info("Aborting scenario", "step", res.Name, "error", res.Error)
			result.Aborted = true
			break
		}
	}
	result.Duration = time.Since(result.StartedAt)
	log.Info("Finished scenario", "aborted", result.Aborted, "failed", result.Failed())
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, st *state, step Step) (res StepResult) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()
	res = StepResult{Name: step.label(), Action: step.Action}
	obs, err := r.execute(ctx, st, step, &res)

	switch {
	case errors.Is(err, errSkipped):
		res.Status = StatusSkipped
		res.Lines = append(res.Lines, err.Error())
		return res
	case err != nil:
		res.Status = StatusErrored
		res.Error = err.Error()
		return res
	}

	if step.Assert != "" {
		ok, err := r.asserts.evaluate(step.Assert, obs)
		if err != nil {
			res.Status = StatusErrored
			res.Error = err.Error()
			return res
		}
		res.Checks = append(res.Checks, Check{Name: "assert", Expected: step.Assert, Actual: strconv.FormatBool(ok), Passed: ok})
	}

	res.Status = StatusPassed
	for _, c := range res.Checks {
		if !c.Passed {
			res.Status = StatusFailed
			break
		}
	}
	return res
}

func (r *Runner) execute(ctx context.Context, st *state, step Step, res *StepResult) (observation, error) {
	switch step.Action {
	case ActionMaxPorts:
		return r.maxPorts(ctx, st, step, res)
	case ActionListPorts:
		return r.listPorts(ctx, st, res)
	case ActionToggleFunction:
		return r.toggleFunction(ctx, st, step, res)
	}

	port, err := r.port(ctx, st, step)
	if err != nil {
		return observation{}, err
	}
	obs := observation{port: &port, ports: st.ports}

	switch step.Action {
	case ActionGetFunction:
		fn, _ := oom.ParseFunction(step.Function)
		value, err := r.client.GetFunction(ctx, port, fn)
		if err != nil {
			return obs, err
		}
		obs.value = value
		res.Lines = append(res.Lines, fmt.Sprintf("Port: %d, %s value: %d", port.Num, fn, value))
		res.Checks = append(res.Checks, expectValue(fn.String(), step.ExpectValue, value)...)
	case ActionSetFunction:
		fn, _ := oom.ParseFunction(step.Function)
		if err := r.client.SetFunction(ctx, port, fn, step.Value); err != nil {
			return obs, err
		}
		obs.value = step.Value
		res.Lines = append(res.Lines, fmt.Sprintf("Port: %d, %s set to: %d", port.Num, fn, step.Value))
	case ActionWriteBytes:
		buf := make([]byte, step.bufferSize())
		res.Buffer = r.allocated(step, len(buf))
		for i := range buf {
			buf[i] = byte(step.Pattern.Value(i))
		}
		n, err := r.client.SetMemoryRaw(ctx, port, step.Address, step.Page, step.Offset, step.Length, buf)
		if err != nil {
			return obs, err
		}
		obs.count = n
		obs.data = bytesToInts(buf[:n])
		res.Lines = append(res.Lines, fmt.Sprintf("wrote %d bytes to port %d, address %#x page %d offset %d",
			n, port.Num, step.Address, step.Page, step.Offset))
	case ActionReadBytes, ActionDumpBytes:
		buf := make([]byte, step.bufferSize())
		res.Buffer = r.allocated(step, len(buf))
		n, err := r.client.GetMemoryRaw(ctx, port, step.Address, step.Page, step.Offset, step.Length, buf)
		if err != nil {
			return obs, err
		}
		obs.count = n
		obs.data = bytesToInts(buf[:n])
		if step.Action == ActionDumpBytes {
			res.Lines = append(res.Lines, fmt.Sprintf("contents of port %d, page %d:", port.Num, step.Page))
			res.Lines = append(res.Lines, hexdump.Lines(buf[:n])...)
		}
		r.expectData(step, obs.data, res)
	case ActionWriteWords:
		buf := make([]uint16, step.bufferSize())
		res.Buffer = r.allocated(step, len(buf))
		for i := range buf {
			buf[i] = uint16(step.Pattern.Value(i))
		}
		n, err := r.client.SetMemoryRaw16(ctx, port, step.Offset, step.Length, buf)
		if err != nil {
			return obs, err
		}
		obs.count = n
		obs.data = wordsToInts(buf[:n])
		res.Lines = append(res.Lines, fmt.Sprintf("wrote %d words to port %d, offset %#x", n, port.Num, step.Offset))
	case ActionReadWords:
		buf := make([]uint16, step.bufferSize())
		res.Buffer = r.allocated(step, len(buf))
		n, err := r.client.GetMemoryRaw16(ctx, port, step.Offset, step.Length, buf)
		if err != nil {
			return obs, err
		}
		obs.count = n
		obs.data = wordsToInts(buf[:n])
		r.expectData(step, obs.data, res)
	case ActionReadKeys:
		var errs []error
		for _, key := range step.Keys {
			value, err := oom.GetKeyValue(ctx, r.client, port, key)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			res.Lines = append(res.Lines, fmt.Sprintf("%s: %s", key, value))
		}
		obs.count = len(step.Keys) - len(errs)
		if err := errors.Join(errs...); err != nil {
			return obs, err
		}
	}
	return obs, nil
}

func (r *Runner) maxPorts(ctx context.Context, st *state, step Step, res *StepResult) (observation, error) {
	count, err := r.client.MaxPorts(ctx)
	if err != nil {
		return observation{}, err
	}
	st.maxPorts, st.counted = count, true
	res.Lines = append(res.Lines, fmt.Sprintf("Max Ports: %d", count))
	res.Checks = append(res.Checks, expectValue("max ports", step.ExpectValue, count)...)
	return observation{count: count, value: count}, nil
}

func (r *Runner) listPorts(ctx context.Context, st *state, res *StepResult) (observation, error) {
	if !st.counted {
		count, err := r.client.MaxPorts(ctx)
		if err != nil {
			return observation{}, err
		}
		st.maxPorts, st.counted = count, true
	}
	ports, err := r.client.PortList(ctx, st.maxPorts)
	if err != nil {
		return observation{}, err
	}
	st.ports, st.listed = ports, true

	res.Lines = append(res.Lines, "    Port#  type    seq   flags")
	for _, p := range ports {
		res.Lines = append(res.Lines, fmt.Sprintf("%7d%7d%7d%7x", p.Num, int(p.Type), p.SeqNum, p.Flags))
	}
	return observation{count: len(ports), ports: ports}, nil
}

// toggleFunction sets the function of every port to the step values cycled by
// port index and reads each value back.
func (r *Runner) toggleFunction(ctx context.Context, st *state, step Step, res *StepResult) (observation, error) {
	if err := r.ensurePorts(ctx, st); err != nil {
		return observation{}, err
	}
	fn, _ := oom.ParseFunction(step.Function)
	values := step.Values
	if len(values) == 0 {
		values = []int{1, 0}
	}

	obs := observation{ports: st.ports}
	var errs []error
	for i, port := range st.ports {
		if !step.When.matches(port) {
			continue
		}
		want := values[i%len(values)]
		if err := r.client.SetFunction(ctx, port, fn, want); err != nil {
			errs = append(errs, err)
			continue
		}
		got, err := r.client.GetFunction(ctx, port, fn)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		obs.data = append(obs.data, got)
		obs.count++
		res.Lines = append(res.Lines, fmt.Sprintf("Port: %d, %s value: %d", port.Num, fn, got))
		res.Checks = append(res.Checks, Check{
			Name:     fmt.Sprintf("port %d %s", port.Num, fn),
			Expected: strconv.Itoa(want),
			Actual:   strconv.Itoa(got),
			Passed:   want == got,
		})
	}
	return obs, errors.Join(errs...)
}

func (r *Runner) ensurePorts(ctx context.Context, st *state) error {
	if st.listed {
		return nil
	}
	ports, err := r.client.Ports(ctx)
	if err != nil {
		return err
	}
	st.maxPorts, st.counted = len(ports), true
	st.ports, st.listed = ports, true
	return nil
}

// port resolves the port index of a step and evaluates its condition.
func (r *Runner) port(ctx context.Context, st *state, step Step) (oom.Port, error) {
	if err := r.ensurePorts(ctx, st); err != nil {
		return oom.Port{}, err
	}
	if step.Port >= len(st.ports) {
		return oom.Port{}, fmt.Errorf("port index %d out of range (%d ports)", step.Port, len(st.ports))
	}
	port := st.ports[step.Port]
	if !step.When.matches(port) {
		return oom.Port{}, fmt.Errorf("%w: port %d is %s, not %s", errSkipped, port.Num, port.Type, step.When.PortType)
	}
	return port, nil
}

func (c *Condition) matches(port oom.Port) bool {
	if c == nil || c.PortType == "" {
		return true
	}
	t, err := oom.ParsePortType(c.PortType)
	return err == nil && t == port.Type
}

func (r *Runner) allocated(step Step, size int) string {
	handle := uuid.NewString()
	r.log.V(1).Info("Allocated buffer", "step", step.label(), "handle", handle, "size", size)
	return handle
}

// expectData checks the expected buffer values and prints them next to the actual ones.
func (r *Runner) expectData(step Step, data []int, res *StepResult) {
	if len(step.Expect) == 0 {
		return
	}
	indexes := make([]int, 0, len(step.Expect))
	for i := range step.Expect {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	expected := make([]string, 0, len(indexes))
	actual := make([]string, 0, len(indexes))
	for _, i := range indexes {
		want := strconv.Itoa(step.Expect[i])
		got := "missing"
		if i >= 0 && i < len(data) {
			got = strconv.Itoa(data[i])
		}
		expected = append(expected, want)
		actual = append(actual, got)
		res.Checks = append(res.Checks, Check{Name: fmt.Sprintf("[%d]", i), Expected: want, Actual: got, Passed: want == got})
	}
	res.Lines = append(res.Lines, fmt.Sprintf("%s (should be %s): %s",
		step.label(), strings.Join(expected, ", "), strings.Join(actual, ", ")))
}

func expectValue(name string, expected *int, actual int) []Check {
	if expected == nil {
		return nil
	}
	return []Check{{
		Name:     name,
		Expected: strconv.Itoa(*expected),
		Actual:   strconv.Itoa(actual),
		Passed:   *expected == actual,
	}}
}

func bytesToInts(data []byte) []int {
	out := make([]int, len(data))
	for i, b := range data {
		out[i] = int(b)
	}
	return out
}

func wordsToInts(data []uint16) []int {
	out := make([]int, len(data))
	for i, w := range data {
		out[i] = int(w)
	}
	return out
}
