// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironcore-dev/oom-southbound/oom"
)

func NewFunctionCommand() *cobra.Command {
	functionCmd := &cobra.Command{
		Use:   "function",
		Short: "Get or set a control function of a port",
		Args:  cobra.NoArgs,
	}
	functionCmd.AddCommand(&cobra.Command{
		Use:   "get PORT FUNCTION",
		Short: "Get the value of a control function",
		Args:  cobra.ExactArgs(2),
		RunE:  runFunctionGet,
	})
	functionCmd.AddCommand(&cobra.Command{
		Use:   "set PORT FUNCTION VALUE",
		Short: "Set the value of a control function",
		Args:  cobra.ExactArgs(3),
		RunE:  runFunctionSet,
	})
	return functionCmd
}

func runFunctionGet(cmd *cobra.Command, args []string) error {
	fn, err := oom.ParseFunction(args[1])
	if err != nil {
		return err
	}
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	port, err := lookupPort(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	value, err := client.GetFunction(cmd.Context(), port, fn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Port: %d, %s value: %d\n", port.Num, fn, value)
	return nil
}

func runFunctionSet(cmd *cobra.Command, args []string) error {
	fn, err := oom.ParseFunction(args[1])
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid value %q", args[2])
	}
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	port, err := lookupPort(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	if err := client.SetFunction(cmd.Context(), port, fn, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Port: %d, %s set to: %d\n", port.Num, fn, value)
	return nil
}
