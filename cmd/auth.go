package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/donalf/yt2spot/internal/server"
	"github.com/donalf/yt2spot/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultAuthTimeout = 3 * time.Minute

// AuthLogin runs the OAuth2 authorization-code flow: it starts the local
// callback listener, prints the authorization URL, and exchanges the
// redirect's code for a cached token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.requireSpotify()
	if err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(state)

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	callbackServer := server.NewCallbackServer(addr, handler, r.logger)
	callbackServer.Start()

	r.writePlain("Open this URL in your browser to authorize:\n\n")
	r.writePlain("  %s\n\n", spotify.AuthURL(state))
	r.writePlain("Waiting for the redirect on http://%s/callback ...\n", addr)

	code, err := callbackServer.Wait(ctx, timeout)
	if err != nil {
		return fmt.Errorf("authorization did not complete: %w", err)
	}

	if err := spotify.Exchange(ctx, code); err != nil {
		return err
	}

	r.logger.Info("authentication successful", "token_cache", spotify.TokenPath())
	return r.writePlain("✓ Authentication successful. Token cached at %s\n", spotify.TokenPath())
}

// AuthStatus reports whether a usable cached token exists.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.requireSpotify()
	if err != nil {
		return err
	}

	if _, err := os.Stat(spotify.TokenPath()); err != nil {
		r.writePlain("✗ Not authenticated (no token cache at %s)\n", spotify.TokenPath())
		return r.writePlain("Run `yt2spot auth login` to authenticate.\n")
	}

	if err := spotify.Authenticate(ctx); err != nil {
		r.writePlain("✗ Cached token is unusable: %v\n", err)
		return r.writePlain("Run `yt2spot auth login` to re-authenticate.\n")
	}

	user, err := spotify.Me(ctx)
	if err != nil {
		r.writePlain("✓ Token valid, but profile lookup failed: %v\n", err)
		return nil
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	return r.writePlain("✓ Authenticated as %s\n", name)
}
