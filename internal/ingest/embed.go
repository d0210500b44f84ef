package ingest

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/docrag/internal/chunker"
	"github.com/yildizm/docrag/internal/monitor"
)

// embedAll embeds chunks in batches, running at most opts.Concurrency
// batches at once. Vectors are returned in chunk order.
func (p *Pipeline) embedAll(ctx context.Context, chunks []*chunker.Chunk, rec *monitor.Recorder) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	batches := lo.Chunk(lo.Range(len(chunks)), p.opts.BatchSize)
	done := atomic.NewInt64(0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			texts := lo.Map(batch, func(i int, _ int) string { return chunks[i].Text })

			var embedded [][]float32
			err := rec.Track(monitor.StageEmbedBatch, func() (err error) {
				embedded, err = p.embedder.EmbedDocuments(gctx, texts)
				return err
			})
			if err != nil {
				return err
			}
			if len(embedded) != len(batch) {
				return errors.Errorf("embedder returned %d vectors for %d texts", len(embedded), len(batch))
			}
			for j, i := range batch {
				vectors[i] = embedded[j]
			}

			n := done.Add(int64(len(batch)))
			p.log.Debug("Embedded %d/%d chunks", n, len(chunks))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
