package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root command and registers subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "pageinfo",
		Short: "Analyze the structure of web pages over HTTP.",
		Long: `pageinfo serves GET /?url=<page> and answers with the page's HTML version,
title, heading counts, link breakdown and whether it carries a login form.
Results are cached for 24 hours per URL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml, json or toml)")
	cmd.AddCommand(newServeCmd(&cfgFile))

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
