package main

import (
	"context"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the read-only JSON API until ctx is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	srv := server.New(addr, r.releases, r.tape, r.logger)
	r.logger.Info("serving JSON API", "addr", addr)
	return srv.ListenAndServe(ctx)
}
