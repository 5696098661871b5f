// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/H0llyW00dzZ/mcp-demo-server/src/logger"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/mcp-server/templates"
	"github.com/H0llyW00dzZ/mcp-demo-server/src/version"
	"golang.org/x/sync/errgroup"
)

var appVersion = version.Version // default version

// GetVersion returns the current version of the MCP server.
//
// The version is initially set to the default from the version package,
// but can be overridden when calling Run() with a specific version string.
func GetVersion() string {
	return appVersion
}

// Run builds the command line and executes it with os.Args.
//
// Parameters:
//   - version: Version string reported by --version (e.g., "1.0.0")
//   - configFile: Default configuration file, overridable with --config
//
// Returns:
//   - error: Configuration, build or serve failure. A signal-triggered
//     shutdown is not an error.
func Run(version, configFile string) error {
	appVersion = version

	framework := NewCLIFramework(configFile, ServerDependencies{
		Version:  version,
		Embed:    templates.MagicEmbed,
		Defaults: true,
	})

	rootCmd, err := framework.BuildRootCommand()
	if err != nil {
		return fmt.Errorf("failed to build command: %w", err)
	}
	return rootCmd.Execute()
}

// ListenAndServe listens on addr and serves d over HTTP until ctx is done.
func ListenAndServe(ctx context.Context, d *Dispatcher, l logger.Logger, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, d, l, ln)
}

// Serve serves d over HTTP on ln until ctx is done, then shuts down gracefully.
//
// In-flight requests get http.shutdownTimeoutSeconds to finish. Serve takes
// ownership of ln.
//
// Returns:
//   - error: nil after a shutdown triggered by ctx, otherwise the serve or shutdown error
func Serve(ctx context.Context, d *Dispatcher, l logger.Logger, ln net.Listener) error {
	cfg := d.Config()
	handler := NewHTTPHandler(d, l)

	srv := &http.Server{
		Handler:           handler.NewServeMux(),
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Printf("%s listening on http://%s%s", cfg.Server.DisplayName, ln.Addr(), cfg.HTTP.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		l.Printf("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
