// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/ironcore-dev/oom-southbound/internal/report"
	"github.com/ironcore-dev/oom-southbound/internal/scenario"
	"github.com/ironcore-dev/oom-southbound/internal/sysinfo"
)

var (
	scenarioPath string
	outputFormat string
	color        bool
	strict       bool
)

func NewRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a port access validation scenario",
		Long: "Run a port access validation scenario against the provider. Without --scenario the " +
			"built-in validation sequence is run.",
		Args: cobra.NoArgs,
		RunE: runScenario,
	}
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML or JSON scenario file.")
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", string(report.FormatText), "Output format: text, json or yaml.")
	runCmd.Flags().BoolVar(&color, "color", false, "Colorize text output.")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Fail when any step failed, not only when the run aborted.")
	return runCmd
}

func runScenario(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	s := scenario.Default()
	if scenarioPath != "" {
		if s, err = scenario.Load(scenarioPath); err != nil {
			return err
		}
	}

	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	log := ctrl.Log.WithName("scenario")
	result, err := scenario.NewRunner(log, client).Run(cmd.Context(), s)
	if err != nil {
		return err
	}

	if err := report.Write(cmd.OutOrStdout(), report.New(sysinfo.Collect(log), result), format, color); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	switch {
	case result.Aborted:
		return fmt.Errorf("scenario %q aborted", s.Name)
	case strict && result.Failed():
		return fmt.Errorf("scenario %q failed", s.Name)
	}
	return nil
}
