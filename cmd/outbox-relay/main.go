// Package main runs the outbox relay: the standalone process that drains the
// gamification outbox collection into Kafka and serves the monitoring API.
package main

import (
	"fmt"
	"os"

	"github.com/Muscledia/gamification-outbox/pkg/core/worker"
	"github.com/Muscledia/gamification-outbox/pkg/modules"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "outbox-relay",
		Short:   "Deliver gamification events from the outbox collection to Kafka",
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the delivery pipeline and the monitoring API",
		Run: func(cmd *cobra.Command, args []string) {
			newApp().Run()
		},
	}
}

func newApp() *fx.App {
	return fx.New(
		modules.NewCoreModule(),
		modules.NewObservabilityModule(),
		modules.NewPersistenceModule(),
		modules.NewMessagingModule(),
		modules.NewHTTPModule(),
		worker.Activate(),
	)
}
