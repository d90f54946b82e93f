package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhytabest/plashboard/internal/runtime"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler until interrupted",
	Long: `Initialize the data directory, start the tick scheduler, and block
until SIGINT or SIGTERM. In-flight runs finish before exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := runtime.New(GetConfig())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := rt.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()
		return rt.Stop()
	},
}
