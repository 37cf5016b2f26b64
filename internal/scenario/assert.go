// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package scenario

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ironcore-dev/oom-southbound/oom"
)

// observation is what a step saw, exposed to assert expressions.
type observation struct {
	data  []int
	count int
	value int
	port  *oom.Port
	ports []oom.Port
}

func portEnv(p oom.Port) map[string]any {
	return map[string]any{
		"num":   p.Num,
		"type":  p.Type.String(),
		"seq":   p.SeqNum,
		"flags": int(p.Flags),
	}
}

func (o observation) env() map[string]any {
	data := o.data
	if data == nil {
		data = []int{}
	}
	port := map[string]any{}
	if o.port != nil {
		port = portEnv(*o.port)
	}
	ports := make([]map[string]any, 0, len(o.ports))
	for _, p := range o.ports {
		ports = append(ports, portEnv(p))
	}
	return map[string]any{
		"data":  data,
		"count": o.count,
		"value": o.value,
		"port":  port,
		"ports": ports,
	}
}

// assertions compiles assert expressions once per run.
type assertions struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

func newAssertions() *assertions {
	return &assertions{programs: map[string]*vm.Program{}}
}

func (a *assertions) program(expression string, env map[string]any) (*vm.Program, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.programs[expression]; ok {
		return p, nil
	}
	p, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid assert %q: %w", expression, err)
	}
	a.programs[expression] = p
	return p, nil
}

// evaluate runs expression against the observation of a step.
func (a *assertions) evaluate(expression string, o observation) (bool, error) {
	env := o.env()
	program, err := a.program(expression, env)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate assert %q: %w", expression, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("assert %q yielded %T", expression, out)
	}
	return ok, nil
}
