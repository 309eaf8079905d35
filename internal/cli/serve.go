package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/internal/manager"
	"github.com/PaulieB14/grc20-publisher/pkg/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved entities and archived edits over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			mgr := manager.NewStoreManager(a.cfg.Storage.DataDir, a.memoryProfile(), true)
			defer mgr.CloseAll()

			srv := server.NewServer(mgr, a.reg, a.cfg.Network.BrowserURL, a.logger)
			hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

			errc := make(chan error, 1)
			go func() { errc <- hs.ListenAndServe() }()
			a.logger.Info().Str("addr", addr).Str("data_dir", a.cfg.Storage.DataDir).Msg("serving")

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := hs.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured server address)")
	return cmd
}
