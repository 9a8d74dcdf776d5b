package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write sitemap.xml once and exit",
		RunE:  runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer a.Close()

	if _, err := a.generator.Run(cmd.Context()); err != nil {
		// already logged by the generator
		return err
	}
	return nil
}
