package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"heyq/internal/application/port/input"
	"heyq/internal/di"
)

var (
	runSession string
	runHeaded  bool
	runSlowMo  int
	runUseAI   bool
)

var runCmd = &cobra.Command{
	Use:   "run [utterance]",
	Short: "Process one utterance and print the verdict as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := di.NewContainer(cfgFile)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Minute)
		defer cancel()

		resp := c.Orchestrator.Run(ctx, input.RunRequest{
			Utterance: strings.Join(args, " "),
			SessionID: runSession,
			Headed:    runHeaded,
			SlowMoMs:  runSlowMo,
			UseAI:     runUseAI,
		})

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if !resp.OK {
			return fmt.Errorf("run failed: %s", resp.Error)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runSession, "session", "cli", "session id for context carryover")
	runCmd.Flags().BoolVar(&runHeaded, "headed", false, "show the browser window")
	runCmd.Flags().IntVar(&runSlowMo, "slow-mo", 0, "per-action delay in milliseconds")
	runCmd.Flags().BoolVar(&runUseAI, "use-ai", false, "consult the selector advisor on resolution failure")
	rootCmd.AddCommand(runCmd)
}
