// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironcore-dev/oom-southbound/oom"
)

func NewKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys PORT [KEY...]",
		Short: "Decode named identity fields of a module",
		Long:  "Decode named identity fields of a module. Without keys all known keys of the port type are shown.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKeys,
	}
}

func runKeys(cmd *cobra.Command, args []string) error {
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	port, err := lookupPort(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	keys := args[1:]
	if len(keys) == 0 {
		keys = oom.KeyNames(port.Type)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no keys known for %s", port)
	}
	for _, key := range keys {
		value, err := oom.GetKeyValue(cmd.Context(), client, port, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, value)
	}
	return nil
}
