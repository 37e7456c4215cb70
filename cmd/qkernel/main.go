// Command qkernel benchmarks the gate kernels and runs small demo circuits.
//
// Usage:
//
//	qkernel [flags]
//
// Examples:
//
//	qkernel -qubits 22 -arity 3 -iters 20
//	qkernel -backend generic -workers 1
//	qkernel -circuit ghz -qubits 4
//	qkernel -circuit qft -qubits 12 -snapshot qft.qsv -codec zstd
//	qkernel -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwbudde/algo-qsim/aligned"
	"github.com/cwbudde/algo-qsim/kernel"
	"github.com/cwbudde/algo-qsim/metrics"
	"github.com/cwbudde/algo-qsim/snapshot"
	"github.com/cwbudde/algo-qsim/statevec"
)

type options struct {
	qubits   int
	arity    int
	iters    int
	backend  string
	workers  int
	circuit  string
	show     int
	snapshot string
	codec    string
	metrics  string
	verbose  bool
}

func main() {
	var o options
	flag.IntVar(&o.qubits, "qubits", 20, "state size in qubits")
	flag.IntVar(&o.arity, "arity", 2, "gate arity for the benchmark (1-5)")
	flag.IntVar(&o.iters, "iters", 10, "gate applications per benchmark row")
	flag.StringVar(&o.backend, "backend", "", "kernel backend (generic, lanes, auto); empty benchmarks all")
	flag.IntVar(&o.workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	flag.StringVar(&o.circuit, "circuit", "bench", "what to run: bench, ghz or qft")
	flag.IntVar(&o.show, "show", 0, "qubits shown in the histogram (0 = up to 5)")
	flag.StringVar(&o.snapshot, "snapshot", "", "write the final state to this file")
	flag.StringVar(&o.codec, "codec", "zstd", "snapshot compression: none, zstd or lz4")
	flag.StringVar(&o.metrics, "metrics", "", "serve Prometheus metrics on this address and wait for SIGINT")
	flag.BoolVar(&o.verbose, "v", false, "debug logging")
	list := flag.Bool("list", false, "list registered backends")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qkernel [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Benchmarks state-vector gate kernels and runs demo circuits.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  qkernel -qubits 22 -arity 3\n")
		fmt.Fprintf(os.Stderr, "  qkernel -circuit ghz -qubits 4\n")
		fmt.Fprintf(os.Stderr, "  qkernel -circuit qft -qubits 12 -snapshot qft.qsv\n")
		fmt.Fprintf(os.Stderr, "  qkernel -list\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *list {
		printBackends(os.Stdout)
		return
	}

	if err := run(o, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, logger *slog.Logger) error {
	if o.qubits < 1 || o.qubits > statevec.MaxQubits {
		return fmt.Errorf("qubits must be in [1, %d]", statevec.MaxQubits)
	}

	var collector kernel.MetricsCollector = kernel.NoopMetricsCollector{}
	var srv *http.Server
	if o.metrics != "" {
		reg := prometheus.NewRegistry()
		pc, err := metrics.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		collector = pc
		srv = serveMetrics(o.metrics, reg, logger)
	}

	engOpts := []kernel.Option{
		kernel.WithWorkers(o.workers),
		kernel.WithLogger(logger),
		kernel.WithMetrics(collector),
	}

	alloc := aligned.New()
	state, err := statevec.New(alloc, o.qubits)
	if err != nil {
		return err
	}
	defer state.Free()
	logger.Debug("state allocated", "qubits", o.qubits, "alignment", alloc.Alignment())

	switch o.circuit {
	case "bench":
		err = runBench(os.Stdout, state, o, engOpts)
	case "ghz":
		err = runGHZ(os.Stdout, state, o, engOpts)
	case "qft":
		err = runQFT(os.Stdout, state, o, engOpts)
	default:
		err = fmt.Errorf("unknown circuit %q", o.circuit)
	}
	if err != nil {
		return err
	}

	if o.snapshot != "" {
		if err := writeSnapshot(o.snapshot, o.codec, state, logger); err != nil {
			return err
		}
	}

	if srv != nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("serving metrics, interrupt to exit", "addr", o.metrics)
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func writeSnapshot(path, codecName string, state *statevec.State, logger *slog.Logger) error {
	codec, err := snapshot.ParseCodec(codecName)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	used, err := snapshot.Write(f, state.Amplitudes(), codec)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("snapshot written", "path", path, "codec", used.String())
	return nil
}
