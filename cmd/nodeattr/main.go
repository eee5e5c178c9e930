package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var jsonLogs bool

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// `nodeattr` command
func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nodeattr",
		Short:         "Node attribute store tools",
		Long:          "Tools for exercising the sparse typed node attribute store.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "emit production JSON logs instead of development logs")
	cmd.AddCommand(stressCmd())
	cmd.AddCommand(demoCmd())
	return cmd
}

func newLogger() (*zap.Logger, error) {
	if jsonLogs {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
