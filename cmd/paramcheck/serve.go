package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/bjaus/params"
)

type serveOptions struct {
	addr     string
	rate     float64
	burst    int
	keyParam string
	maxBody  int64
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an endpoint that echoes resolved parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.schema()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a.logger.Info("starting server", "addr", opts.addr)
			err = listenAndServe(ctx, opts.addr, newHandler(a, s, opts))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "Listen address")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "Requests per second per key (0 disables rate limiting)")
	cmd.Flags().IntVar(&opts.burst, "burst", 10, "Rate limit burst")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", 1<<20, "Maximum request body size in bytes")
	cmd.Flags().StringVar(&opts.keyParam, "key-param", "", "Resolved parameter to rate limit on (default: remote IP)")
	return cmd
}

// newHandler echoes the resolved options of every request in its _format.
func newHandler(a *app, s *params.Schema, opts serveOptions) http.Handler {
	mw := []params.Middleware{
		params.RequestID(),
		params.BodyLimit(opts.maxBody),
		params.Bind(s, params.WithBindLogger(a.logger)),
		params.Logger(a.logger),
	}
	if opts.rate > 0 {
		mw = append(mw, params.RateLimit(params.RateLimitConfig{
			Rate:     opts.rate,
			Burst:    opts.burst,
			KeyParam: opts.keyParam,
		}))
	}

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := params.FromContext(r.Context())
		o, err := p.Options(false)
		if err != nil {
			params.WriteError(w, r, s, err)
			return
		}
		if err := params.Render(w, p, http.StatusOK, o); err != nil {
			a.logger.Error("render response", "err", err)
		}
	})

	mux := http.NewServeMux()
	mux.Handle("GET /", params.Chain(mw...)(echo))
	return mux
}

// listenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func listenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
