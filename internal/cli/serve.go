package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindlayout/pkg/api"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API over the configured store.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenes over HTTP",
		Long: `Serve scenes over HTTP.

Edits and layouts requested over the API are applied to the configured
store. Use --log-file to keep request logs out of the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), c.settings.Serve.Addr)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(runner, c.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printDetail("store: %s", c.settings.Store)
	c.Logger.Info("server started", "addr", addr, "store", c.settings.Store)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
