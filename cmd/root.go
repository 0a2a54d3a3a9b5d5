package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/sarahsindone/sbrp-application/cmd/http"
	systemcmd "github.com/sarahsindone/sbrp-application/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "sbrp",
	Short: "SBRP report generation and lifecycle service.",
	Long: `sbrp is the backend for small business restructuring practitioners.
It generates restructuring reports from templates and tracks them from draft
through review and approval to publication.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
