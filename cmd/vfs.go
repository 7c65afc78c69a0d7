package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/oldphoenix/umsftpd/cfg"
	"github.com/oldphoenix/umsftpd/internal/vfsmetrics"
	"github.com/oldphoenix/umsftpd/vfs"
)

// buildVFS constructs a VFS from the mount file named by --mount-config,
// wiring a stdout span exporter and an OTEL-backed Prometheus metrics
// recorder — the demo's equivalent of the teacher's dual exporter setup
// in its mount command.
func buildVFS(ctx context.Context) (*vfs.VFS, func(), error) {
	mountConfigPath := viper.GetString("mount-config")
	if mountConfigPath == "" {
		return nil, nil, fmt.Errorf("cmd: --mount-config is required")
	}
	defs, err := cfg.LoadMountFile(mountConfigPath)
	if err != nil {
		return nil, nil, err
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("cmd: stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tp)

	promExporter, err := otelprometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("cmd: prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter))
	otel.SetMeterProvider(mp)

	recorder, err := vfsmetrics.New(mp.Meter("umsftpd"))
	if err != nil {
		return nil, nil, fmt.Errorf("cmd: metrics recorder: %w", err)
	}

	v := vfs.New(settings.BaseFlags, vfs.WithHandleQuota(settings.HandleQuota), vfs.WithMetrics(recorder))
	if err := cfg.ApplyMounts(v, defs); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
	}
	return v, cleanup, nil
}

// serveMetrics exposes /metrics on addr via promhttp, backed by whatever
// the process-wide Prometheus registry has accumulated.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
}
