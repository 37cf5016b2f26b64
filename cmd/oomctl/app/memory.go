// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironcore-dev/oom-southbound/internal/hexdump"
	"github.com/ironcore-dev/oom-southbound/oom"
)

var (
	memAddress int
	memPage    int
	memOffset  int
	memLength  int
	memData    []byte
	wordOffset int
	wordCount  int
	wordValues []int
)

func addRegionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&memAddress, "address", oom.AddressA0, "Device address, e.g. 0xA0 or 0xA2.")
	cmd.Flags().IntVar(&memPage, "page", 0, "Page of the device address.")
	cmd.Flags().IntVar(&memOffset, "offset", 0, "Byte offset into the page.")
}

func NewReadCommand() *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read PORT",
		Short: "Read raw bytes of a module memory page",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	addRegionFlags(readCmd)
	readCmd.Flags().IntVar(&memLength, "length", oom.PageSize/2, "Number of bytes to read.")
	return readCmd
}

func NewWriteCommand() *cobra.Command {
	writeCmd := &cobra.Command{
		Use:   "write PORT",
		Short: "Write raw bytes to a module memory page",
		Args:  cobra.ExactArgs(1),
		RunE:  runWrite,
	}
	addRegionFlags(writeCmd)
	writeCmd.Flags().BytesHexVar(&memData, "data", nil, "Bytes to write, hex encoded.")
	return writeCmd
}

func NewRead16Command() *cobra.Command {
	read16Cmd := &cobra.Command{
		Use:   "read16 PORT",
		Short: "Read raw 16 bit words of a module",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead16,
	}
	read16Cmd.Flags().IntVar(&wordOffset, "offset", 0, "Word offset.")
	read16Cmd.Flags().IntVar(&wordCount, "count", 1, "Number of words to read.")
	return read16Cmd
}

func NewWrite16Command() *cobra.Command {
	write16Cmd := &cobra.Command{
		Use:   "write16 PORT",
		Short: "Write raw 16 bit words to a module",
		Args:  cobra.ExactArgs(1),
		RunE:  runWrite16,
	}
	write16Cmd.Flags().IntVar(&wordOffset, "offset", 0, "Word offset.")
	write16Cmd.Flags().IntSliceVar(&wordValues, "words", nil, "Comma separated words to write.")
	return write16Cmd
}

func runRead(cmd *cobra.Command, args []string) error {
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	port, err := lookupPort(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	if memLength < 0 {
		return fmt.Errorf("invalid length %d", memLength)
	}
	buf := make([]byte, memLength)
	n, err := client.GetMemoryRaw(cmd.Context(), port, memAddress, memPage, memOffset, memLength, buf)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "contents of port %d, address %#x, page %d, offset %d:\n", port.Num, memAddress, memPage, memOffset)
	fmt.Fprint(cmd.OutOrStdout(), hexdump.String(buf[:n]))
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	if len(memData) == 0 {
		return fmt.Errorf("no data given")
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
	n, err := client.SetMemoryRaw(cmd.Context(), port, memAddress, memPage, memOffset, len(memData), memData)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to port %d, address %#x page %d offset %d\n", n, port.Num, memAddress, memPage, memOffset)
	return nil
}

func runRead16(cmd *cobra.Command, args []string) error {
	client, closeProvider, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer closeProvider()

	port, err := lookupPort(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	if wordCount < 0 {
		return fmt.Errorf("invalid count %d", wordCount)
	}
	buf := make([]uint16, wordCount)
	n, err := client.GetMemoryRaw16(cmd.Context(), port, wordOffset, wordCount, buf)
	if err != nil {
		return err
	}
	words := make([]string, n)
	for i, w := range buf[:n] {
		words[i] = fmt.Sprintf("%d", w)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "words of port %d at %#x: %s\n", port.Num, wordOffset, strings.Join(words, ", "))
	return nil
}

func runWrite16(cmd *cobra.Command, args []string) error {
	if len(wordValues) == 0 {
		return fmt.Errorf("no words given")
	}
	words := make([]uint16, len(wordValues))
	for i, v := range wordValues {
		if v < 0 || v > 0xFFFF {
			return fmt.Errorf("word %d out of range: %d", i, v)
		}
		words[i] = uint16(v)
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
	n, err := client.SetMemoryRaw16(cmd.Context(), port, wordOffset, len(words), words)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d words to port %d, offset %#x\n", n, port.Num, wordOffset)
	return nil
}
