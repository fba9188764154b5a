package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cliCtx.Config.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cliCtx.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, _, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cliCtx.Logger.Info("starting cdforge server",
				logging.String("addr", cliCtx.Config.Server.Addr()),
				logging.String("version", Version))
			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

//Personal.AI order the ending
