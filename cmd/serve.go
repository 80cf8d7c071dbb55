package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundcheck/internal/server"
	"github.com/desertthunder/soundcheck/internal/services"
	"github.com/desertthunder/soundcheck/internal/shared"
	"github.com/urfave/cli/v3"
)

// before applies the global flags: a non-default --config is resolved and replaces the startup config.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" || path == r.configPath {
		return ctx, nil
	}

	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}
	r.configPath = path
	r.SetConfig(config)
	return ctx, nil
}

// Serve runs the token broker until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if !creds.Valid() {
		return fmt.Errorf("%w: set client_id and client_secret in %s or %s/%s",
			shared.ErrMissingCredentials, r.configPath, shared.EnvClientID, shared.EnvClientSecret)
	}

	oauth, err := services.NewOAuthConfig(creds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.WithLogger(r.logger, "component", "broker")
	broker := server.NewBroker(server.BrokerOpts{OAuth: oauth, Logger: logger, HTTPClient: r.httpClient})
	defer broker.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	if cmd.Bool("open") {
		loginURL := services.NewBrokerClient("http://"+addr, nil).LoginURL()
		if err := shared.OpenBrowser(loginURL); err != nil {
			r.logger.Warn("could not open browser", "url", loginURL, "error", err)
		}
	}

	r.writePlain("Server is running on http://%s\n", addr)
	return server.Serve(ctx, addr, server.NewRouter(broker, logger), logger)
}

// Token prints the broker's current access token.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	token, err := r.broker.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("%w (log in at %s)", err, r.broker.LoginURL())
	}

	if cmd.Bool("json") {
		return r.writeJSON(services.TokenResponse{AccessToken: token}, false)
	}
	return r.writePlain("%s\n", token)
}
