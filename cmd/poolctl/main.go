package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/respool/internal/demo"
	"github.com/ajitpratap0/respool/pkg/logger"
	"github.com/ajitpratap0/respool/pkg/poolconfig"
	"github.com/ajitpratap0/respool/pkg/respool"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:   "poolctl",
		Short: "poolctl - drive and inspect a generic resource pool",
		Long: `poolctl is a small operator CLI around the respool package. It exists to
exercise a pool end to end without writing Go: run a synthetic workload
against an in-memory factory, or serve a pool's Prometheus metrics over
HTTP.`,
	}

	root.AddCommand(versionCmd(), demoCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("poolctl v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func demoCmd() *cobra.Command {
	var min, max, workers int
	var duration time.Duration
	var flaky bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a synthetic workload against an in-memory pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(min, max, workers, duration, flaky)
		},
	}

	cmd.Flags().IntVar(&min, "min", 1, "minimum pool size")
	cmd.Flags().IntVar(&max, "max", 4, "maximum pool size")
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent goroutines acquiring/releasing")
	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to run the workload")
	cmd.Flags().BoolVar(&flaky, "flaky", false, "use a factory that occasionally fails Create")

	return cmd
}

func runDemo(min, max, workers int, duration time.Duration, flaky bool) error {
	log := logger.Get().With(zap.String("component", "poolctl-demo"))

	var factory respool.Factory
	if flaky {
		factory = demo.FlakyWidgetFactory(20*time.Millisecond, 0.2, rand.New(rand.NewSource(1)))
	} else {
		factory = demo.WidgetFactory(20*time.Millisecond, 5*time.Second)
	}

	cfg := respool.NewConfig("demo", factory)
	cfg.Min = min
	cfg.Max = max
	cfg.Log = true
	cfg.AcquireTimeout = 2 * time.Second

	p, err := respool.New(cfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func(id int) {
			for {
				select {
				case <-ctx.Done():
					done <- struct{}{}
					return
				default:
				}
				h, err := p.Acquire(ctx)
				if err != nil {
					continue
				}
				time.Sleep(5 * time.Millisecond)
				_ = p.Release(h)
			}
		}(i)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			for i := 0; i < workers; i++ {
				<-done
			}
			log.Info("demo finished", zap.Any("stats", p.Stats()))
			return nil
		case <-ticker.C:
			s := p.Stats()
			log.Info("pool stats",
				zap.Int("size", s.Size),
				zap.Int("available", s.Available),
				zap.Int("using", s.Using),
				zap.Int("waiting", s.Waiting))
		}
	}
}

func serveCmd() *cobra.Command {
	var addr, configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Prometheus metrics for a pool built from a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configFile)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "HTTP listen address")
	cmd.Flags().StringVar(&configFile, "config", "", "path to a pool YAML config (env RESPOOL_MIN, RESPOOL_MAX, RESPOOL_LOG override the file)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runServe(addr, configFile string) error {
	viper.SetEnvPrefix("RESPOOL")
	viper.AutomaticEnv()

	fc, err := poolconfig.Load(configFile)
	if err != nil {
		return err
	}

	factory := demo.WidgetFactory(20*time.Millisecond, 30*time.Second)
	cfg := poolconfig.Apply(respool.NewConfig(fc.Name, factory), fc)

	p, err := respool.New(cfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer p.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		s := p.Stats()
		fmt.Fprintf(w, "size=%d available=%d using=%d waiting=%d under_validation=%d\n",
			s.Size, s.Available, s.Using, s.Waiting, s.UnderValidation)
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	log := logger.Get().With(zap.String("component", "poolctl-serve"))
	log.Info("serving pool metrics", zap.String("addr", addr), zap.String("pool", cfg.Name))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sig:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = p.Drain(ctx)
	}
	return nil
}
