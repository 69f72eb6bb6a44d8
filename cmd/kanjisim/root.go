package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/kanjisim"
	"github.com/hupe1980/kanjisim/blobstore"
	kminio "github.com/hupe1980/kanjisim/blobstore/minio"
	ks3 "github.com/hupe1980/kanjisim/blobstore/s3"
	"github.com/hupe1980/kanjisim/config"
	kprom "github.com/hupe1980/kanjisim/metrics/prometheus"
)

// flags holds the persistent flags shared by all subcommands.
type flags struct {
	dataset    string
	configPath string
	output     string
	logLevel   string

	s3Bucket   string
	s3Prefix   string
	s3Region   string
	s3Endpoint string

	minioEndpoint string
	minioBucket   string
	minioSecure   bool

	throttle    int
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "kanjisim",
		Short: "Find visually and structurally similar kanji",
		Long: `kanjisim loads a kanji dataset (JSON, optionally zstd or lz4 compressed),
validates it and answers similarity queries over stroke geometry, stroke
count and radicals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.dataset, "dataset", "d", "kanji.json", "dataset path, or blob name with --s3-bucket/--minio-endpoint")
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&f.output, "output", "o", "text", "output format: text, json or yaml")
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.StringVar(&f.s3Bucket, "s3-bucket", "", "read the dataset from this S3 bucket")
	pf.StringVar(&f.s3Prefix, "s3-prefix", "", "key prefix inside the S3 bucket")
	pf.StringVar(&f.s3Region, "s3-region", "", "AWS region override")
	pf.StringVar(&f.s3Endpoint, "s3-endpoint", "", "custom S3 endpoint (path-style)")
	pf.StringVar(&f.minioEndpoint, "minio-endpoint", "", "read the dataset from this MinIO endpoint (credentials from MINIO_ACCESS_KEY/MINIO_SECRET_KEY)")
	pf.StringVar(&f.minioBucket, "minio-bucket", "kanjisim", "MinIO bucket")
	pf.BoolVar(&f.minioSecure, "minio-secure", true, "use TLS for MinIO")
	pf.IntVar(&f.throttle, "throttle", 0, "limit remote reads to this many bytes per second")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(
		newSimilarCmd(f),
		newLookupCmd(f),
		newReportCmd(f),
	)
	return root
}

// openEngine builds the engine described by the persistent flags. The
// returned cleanup closes the engine and stops the metrics server.
func openEngine(cmd *cobra.Command, f *flags) (*kanjisim.Engine, func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := newRenderer(f.output); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return nil, nil, err
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q", f.logLevel)
	}
	logger := kanjisim.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	source, err := resolveSource(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	opts := []kanjisim.Option{
		kanjisim.WithConfig(cfg),
		kanjisim.WithLogger(logger),
	}

	stopMetrics := func() {}
	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, kanjisim.WithMetricsCollector(kprom.New(reg)))
		if stopMetrics, err = serveMetrics(f.metricsAddr, reg, logger); err != nil {
			return nil, nil, err
		}
	}

	eng, err := kanjisim.Open(ctx, source, opts...)
	if err != nil {
		stopMetrics()
		return nil, nil, err
	}
	return eng, func() {
		_ = eng.Close()
		stopMetrics()
	}, nil
}

func resolveSource(ctx context.Context, f *flags) (kanjisim.Source, error) {
	var store blobstore.BlobStore
	switch {
	case f.s3Bucket != "" && f.minioEndpoint != "":
		return nil, errors.New("--s3-bucket and --minio-endpoint are mutually exclusive")
	case f.s3Bucket != "":
		var s3opts []func(*ks3.Options)
		if f.s3Prefix != "" {
			s3opts = append(s3opts, ks3.WithPrefix(f.s3Prefix))
		}
		if f.s3Region != "" {
			s3opts = append(s3opts, ks3.WithRegion(f.s3Region))
		}
		if f.s3Endpoint != "" {
			s3opts = append(s3opts, ks3.WithEndpoint(f.s3Endpoint))
		}
		s, err := ks3.New(ctx, f.s3Bucket, s3opts...)
		if err != nil {
			return nil, err
		}
		store = s
	case f.minioEndpoint != "":
		client, err := minio.New(f.minioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: f.minioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		store = kminio.NewStore(client, f.minioBucket, "")
	default:
		return kanjisim.Local(f.dataset), nil
	}

	if f.throttle > 0 {
		store = blobstore.NewThrottledStore(store, f.throttle)
	}
	return kanjisim.Remote(store, f.dataset), nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *kanjisim.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
