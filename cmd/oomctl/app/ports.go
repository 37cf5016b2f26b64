// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the ports of the provider",
		Args:  cobra.NoArgs,
		RunE:  runPorts,
	}
}

func runPorts(cmd *cobra.Command, _ []string) error {
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	ports, err := client.Ports(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Max Ports: %d\n", len(ports))
	fmt.Fprintln(out, "    Port#  type    seq   flags")
	for _, p := range ports {
		fmt.Fprintf(out, "%7d%7d%7d%7x  %s\n", p.Num, int(p.Type), p.SeqNum, p.Flags, p.Type)
	}
	return nil
}
