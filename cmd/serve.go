package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"heyq/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := di.NewContainer(cfgFile)
		if err != nil {
			return err
		}
		defer c.Close()

		errCh := make(chan error, 1)
		go func() {
			errCh <- c.Server.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			c.Logger.Info("shutting down", "signal", sig.String())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(ctx); err != nil {
			return err
		}
		return c.Pool.WaitIdle(ctx, c.Config.Browser.PoolSize)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
