// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"flag"
	"time"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

const Name string = "oomctl"

var (
	providerType       string
	serverURL          string
	caFile             string
	certFile           string
	keyFile            string
	insecureSkipVerify bool
	waitTimeout        time.Duration
	zapOpts            = zap.Options{Development: true}
)

func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           Name,
		Short:         "CLI client for the OOM Southbound port access API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts), zap.WriteTo(cmd.ErrOrStderr())))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&providerType, "provider", providerFake, "Provider to use: fake, host or remote.")
	flags.StringVar(&serverURL, "server-url", "http://localhost:9090", "URL of the southbound server for the remote provider.")
	flags.StringVar(&caFile, "ca-file", "", "Path to the CA file for TLS authentication.")
	flags.StringVar(&certFile, "cert-file", "", "Path to the client certificate file for TLS authentication.")
	flags.StringVar(&keyFile, "key-file", "", "Path to the client key file for TLS authentication.")
	flags.BoolVar(&insecureSkipVerify, "insecure-skip-verify", false, "Skip TLS verification of the southbound server.")
	flags.DurationVar(&waitTimeout, "wait-timeout", 10*time.Second, "Time to wait for the southbound server to become ready.")

	goFlags := flag.NewFlagSet(Name, flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	flags.AddGoFlagSet(goFlags)

	root.AddCommand(NewRunCommand())
	root.AddCommand(NewPortsCommand())
	root.AddCommand(NewFunctionCommand())
	root.AddCommand(NewReadCommand())
	root.AddCommand(NewWriteCommand())
	root.AddCommand(NewRead16Command())
	root.AddCommand(NewWrite16Command())
	root.AddCommand(NewKeysCommand())
	root.AddCommand(NewVersionCommand())
	return root
}
