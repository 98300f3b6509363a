package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/market"
	"mirage-indexer/internal/model"
	"mirage-indexer/internal/obs"
	"mirage-indexer/internal/ops"
	"mirage-indexer/internal/persist"
	"mirage-indexer/internal/persist/memory"
	"mirage-indexer/internal/processor"
	"mirage-indexer/internal/vault"
	"mirage-indexer/pkg/conn"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("indexer: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "", "path to the YAML config (optional)")
	inputFlag := flag.String("input", "", "JSON array or JSON lines file of transactions")
	dryRunFlag := flag.Bool("dry-run", false, "process against an in-memory store")
	batchSizeFlag := flag.Int("batch-size", 0, "transactions per batch, overrides the config")
	flag.Parse()

	if *inputFlag == "" {
		return errors.New("missing input; use -input")
	}

	cfg, err := ops.Load(*configFlag)
	if err != nil {
		return err
	}
	if *batchSizeFlag > 0 {
		cfg.Processor.BatchSize = *batchSizeFlag
	}

	if cfg.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.Profiling.AppName,
			ServerAddress:   cfg.Profiling.ServerAddress,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logs.Errorf("metrics server, err: %+v", err)
			}
		}()
		defer func() {
			_ = server.Close()
		}()
	}

	var (
		backend persist.Backend
		store   *memory.Backend
	)
	if *dryRunFlag {
		store = memory.New()
		backend = store
	} else {
		client, err := conn.New(cfg.ConnOption())
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close()
		}()
		backend = persist.NewGormBackend(client.DB())
	}

	proc := processor.New(
		cfg.ProcessorConfig(),
		persist.NewCoordinator(backend, cfg.Storage.MaxParams, metrics),
		metrics,
		vault.NewRegistry(cfg.Processor.ProtocolAddress),
		market.NewRegistry(cfg.Processor.ProtocolAddress),
	)

	txns, err := chain.FileSource{Path: *inputFlag}.Load()
	if err != nil {
		return errors.Wrap(err, "load transactions").With("input", *inputFlag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-sys.Shutdown():
			cancel()
		case <-ctx.Done():
		}
	}()

	batches := chain.Batches(txns, cfg.Processor.BatchSize)
	logs.Infof("indexer loaded %d transactions in %d batches, dry run: %t", len(txns), len(batches), *dryRunFlag)

	for _, batch := range batches {
		if ctx.Err() != nil {
			logs.Info("indexer shutting down")
			break
		}
		start := batch[0].Version.Int64()
		end := batch[len(batch)-1].Version.Int64()
		if _, err := proc.Process(ctx, batch, start, end); err != nil {
			return errors.Wrapf(err, "process batch [%d, %d]", start, end)
		}
	}

	snap := metrics.Snapshot()
	logs.Infof("indexer done, decode latency: %+v, commit latency: %+v", snap.DecodeLatency, snap.CommitLatency)
	if store != nil {
		for _, table := range model.Tables() {
			logs.Infof("%s: %d rows", table.Name, store.Count(table))
		}
	}
	return nil
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
