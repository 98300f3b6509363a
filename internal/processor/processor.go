/*
Processor turns an ordered batch of transactions into persisted rows.

# Module
  - assembler: decodes every user transaction in parallel through the registered modules
  - merger: concatenates per-transaction rows in input order, dedupes snapshots, sorts
  - committer: hands the batch to the persistence coordinator

# Source
  - transactions of one contiguous version range from the transaction source

# Produce
  - one storage transaction per batch, or a ProcessingError tagged with the range
*/
package processor

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"

	"mirage-indexer/internal/chain"
	"mirage-indexer/internal/model"
	"mirage-indexer/internal/obs"
)

// DefaultName identifies the processor in logs and errors.
const DefaultName = "mirage_processor"

// Module decodes and projects the writes and events of one Move module.
type Module interface {
	Name() string
	IsResourceSupported(tag chain.StructTag) bool
	IsEventSupported(tag chain.StructTag) bool
	HandleWrite(tag chain.StructTag, owner string, payload []byte, version int64, ts time.Time) (model.Batch, error)
	HandleEvent(tag chain.StructTag, ev chain.Event, index int, version int64, ts time.Time) (model.Batch, error)
}

// Committer persists one assembled batch atomically.
type Committer interface {
	Commit(ctx context.Context, batch model.Batch) error
}

type Config struct {
	Name    string
	Workers int
	// StrictEvents aborts the batch on an undecodable event instead of
	// skipping it.
	StrictEvents bool
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// ProcessedRange is the inclusive version range of a committed batch.
type ProcessedRange struct {
	StartVersion int64
	EndVersion   int64
}

// ProcessingError tags a failed batch with its version range. The caller
// decides whether to retry the whole range.
type ProcessingError struct {
	Processor    string
	StartVersion int64
	EndVersion   int64
	Err          error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: process versions [%d, %d]: %v", e.Processor, e.StartVersion, e.EndVersion, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

type Processor struct {
	cfg       Config
	modules   []Module
	committer Committer
	metrics   *obs.Metrics
}

func New(cfg Config, committer Committer, metrics *obs.Metrics, modules ...Module) *Processor {
	return &Processor{
		cfg:       cfg.withDefaults(),
		modules:   modules,
		committer: committer,
		metrics:   metrics,
	}
}

func (p *Processor) Name() string {
	return p.cfg.Name
}

// Process decodes txns, which cover versions [start, end], and commits the
// resulting rows in one storage transaction.
func (p *Processor) Process(ctx context.Context, txns []chain.Transaction, start, end int64) (ProcessedRange, error) {
	batchID := uuid.NewString()
	logs.Infof("%s processing %d transactions, start version: %d, end version: %d, batch: %s", p.cfg.Name, len(txns), start, end, batchID)
	p.metrics.AddTransactions(len(txns))

	begin := time.Now()
	batch, err := p.Assemble(ctx, txns)
	p.metrics.ObserveStage(obs.StageDecode, time.Since(begin))
	if err != nil {
		return ProcessedRange{}, p.fail(start, end, err)
	}

	counts := batch.Counts()
	logs.Infof("%s processed %d transactions, start version: %d, end version: %d, batch: %s, rows: %v", p.cfg.Name, len(txns), start, end, batchID, counts)

	begin = time.Now()
	err = p.committer.Commit(ctx, batch)
	p.metrics.ObserveStage(obs.StageCommit, time.Since(begin))
	if err != nil {
		logs.Errorf("%s commit batch %s, err: %+v", p.cfg.Name, batchID, err)
		return ProcessedRange{}, p.fail(start, end, err)
	}

	p.metrics.AddRows(counts)
	p.metrics.SetLastVersion(end)
	return ProcessedRange{StartVersion: start, EndVersion: end}, nil
}

func (p *Processor) fail(start, end int64, err error) error {
	return &ProcessingError{
		Processor:    p.cfg.Name,
		StartVersion: start,
		EndVersion:   end,
		Err:          err,
	}
}

// Assemble decodes every user transaction in parallel and merges the rows
// in input order, deduplicated and sorted.
func (p *Processor) Assemble(ctx context.Context, txns []chain.Transaction) (model.Batch, error) {
	results := make([]model.Batch, len(txns))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Workers)
	for i := range txns {
		if !txns[i].IsUser() {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			b, err := p.transaction(txns[i])
			if err != nil {
				return err
			}
			results[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return model.Batch{}, err
	}

	var batch model.Batch
	for _, b := range results {
		batch.Append(b)
	}
	batch.Dedupe()
	batch.Sort()
	return batch, nil
}

func (p *Processor) transaction(txn chain.Transaction) (model.Batch, error) {
	var (
		out     model.Batch
		version = txn.Version.Int64()
		ts      = txn.Time()
	)

	for _, change := range txn.Changes {
		res, ok := change.Resource()
		if !ok {
			continue
		}
		tag, ok := chain.ParseStructTag(res.Type)
		if !ok {
			continue
		}
		for _, m := range p.modules {
			if !m.IsResourceSupported(tag) {
				continue
			}
			b, err := m.HandleWrite(tag, change.Address, res.Data, version, ts)
			if err != nil {
				return model.Batch{}, err
			}
			out.Append(b)
			break
		}
	}

	for i, ev := range txn.Events {
		tag, ok := chain.ParseStructTag(ev.Type)
		if !ok {
			continue
		}
		for _, m := range p.modules {
			if !m.IsEventSupported(tag) {
				continue
			}
			b, err := m.HandleEvent(tag, ev, i, version, ts)
			if err != nil {
				if p.cfg.StrictEvents {
					return model.Batch{}, err
				}
				logs.Errorf("%s skip event %s at version %d, err: %+v", p.cfg.Name, ev.Type, version, err)
				p.metrics.IncSkippedEvent(m.Name())
				break
			}
			out.Append(b)
			break
		}
	}

	return out, nil
}
