// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2023-present Datadog, Inc.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/DataDog/pointcut/dispatch"
	"github.com/DataDog/pointcut/internal/config"
)

var Watch = &cli.Command{
	Name:  "watch",
	Usage: "Reloads a configuration file every time it changes, reporting errors as they occur",
	Flags: []cli.Flag{
		configFlag,
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve dispatcher metrics for Prometheus on this `ADDRESS` (e.g, localhost:9464)",
		},
	},
	Action: traced("watch", func(clictx *cli.Context) error {
		log := zerolog.Ctx(clictx.Context)
		path := clictx.String(configFlag.Name)
		holder := &dispatch.Holder{}

		group, ctx := errgroup.WithContext(clictx.Context)

		if addr := clictx.String("metrics-addr"); addr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), holder.Collector())

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			log.Info().Stringer("addr", listener.Addr()).Msg("Serving metrics")

			group.Go(func() error {
				return serveMetrics(ctx, listener, reg)
			})
		}

		group.Go(func() error {
			return config.Watch(ctx, path, func(file *config.File, err error) {
				if err != nil {
					log.Error().Err(err).Msg("Failed to load configuration")
					_, _ = fmt.Fprintf(clictx.App.ErrWriter, "error: %v\n", err)
					return
				}
				holder.Swap(file.Dispatcher(withContextLogger(clictx)))
				_, _ = fmt.Fprintf(clictx.App.Writer, "%s: loaded %d aspects\n", file.Name, len(file.Aspects))
			})
		})

		return group.Wait()
	}),
}

func serveMetrics(ctx context.Context, listener net.Listener, reg *prometheus.Registry) error {
	server := &http.Server{
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
