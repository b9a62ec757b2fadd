package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "garage-site",
	Short: "Garage website and content management server",
	Long: `garage-site serves the public garage website, the admin dashboard and the
JSON API over collections stored as JSON files. Without a subcommand it
starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yml, ./configs, /etc/garage-site)")
	rootCmd.AddCommand(serveCmd, cronCmd)
}
