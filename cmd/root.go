package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "heyq",
	Short: "heyq turns spoken shopping commands into verified browser runs",
	Long: `heyq listens for transcribed utterances like "log in to saucedemo and
add a backpack to the cart", plans the browser actions they imply, executes
them against a real page, and reports a PASS/FAIL/PARTIAL verdict.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (optional, defaults apply without one)")
}
