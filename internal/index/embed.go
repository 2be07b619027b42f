package index

import (
	"context"
	"time"
)

// embedBatchSize caps how many symbols the embedding worker embeds before
// writing back to the vector index (spec.md §4.H: "drains a queue in
// batches").
const embedBatchSize = 32

// startEmbedWorker launches the background goroutine that drains
// o.embedQueue in batches, calls the external embedder, upserts into the
// vector index, and persists. It updates the on-disk timestamp once the
// queue has been idle for embedIdleTimer (spec.md §4.F/§4.H).
func (o *Orchestrator) startEmbedWorker(ctx context.Context) {
	o.embedQueue = make(chan embedTask, embedBatchSize*4)
	o.embedWG.Add(1)

	go func() {
		defer o.embedWG.Done()
		batch := make([]embedTask, 0, embedBatchSize)
		idle := time.NewTimer(o.embedIdleTimer)
		defer idle.Stop()

		flush := func() {
			if len(batch) == 0 {
				return
			}
			o.embedBatch(ctx, batch)
			batch = batch[:0]
			if err := o.vecIndex.Persist(); err != nil {
				o.log.Warn("embedding batch persist failed", "error", err)
			}
		}

		for {
			select {
			case t, ok := <-o.embedQueue:
				if !ok {
					flush()
					if err := o.vecIndex.Persist(); err != nil {
						o.log.Warn("final embedding persist failed", "error", err)
					}
					return
				}
				batch = append(batch, t)
				o.markEmbedActivity()
				if len(batch) >= embedBatchSize {
					flush()
				}
				if !idle.Stop() {
					<-idle.C
				}
				idle.Reset(o.embedIdleTimer)
			case <-idle.C:
				flush()
				if o.queueIdleSince(o.embedIdleTimer) {
					if err := o.vecIndex.Persist(); err != nil {
						o.log.Warn("idle embedding persist failed", "error", err)
					}
				}
				idle.Reset(o.embedIdleTimer)
			case <-ctx.Done():
				flush()
				return
			}
		}
	}()
}

// stopEmbedWorker closes the queue and waits for the worker to drain and
// persist one last time.
func (o *Orchestrator) stopEmbedWorker() {
	close(o.embedQueue)
	o.embedWG.Wait()
	o.embedQueue = nil
}

func (o *Orchestrator) markEmbedActivity() {
	o.embedMu.Lock()
	o.lastEmbedActivity = time.Now()
	o.embedMu.Unlock()
}

func (o *Orchestrator) queueIdleSince(d time.Duration) bool {
	o.embedMu.Lock()
	defer o.embedMu.Unlock()
	return time.Since(o.lastEmbedActivity) >= d
}

// embedBatch embeds and upserts one batch, logging (not aborting on) any
// single embedding failure — a bad symbol's text should not stall the rest
// of the queue.
func (o *Orchestrator) embedBatch(ctx context.Context, batch []embedTask) {
	for _, t := range batch {
		vec, err := o.embedder.Embed(ctx, t.Text)
		if err != nil {
			o.log.Warn("embedding failed", "symbol", t.SymbolID, "error", err)
			continue
		}
		o.vecIndex.UpsertEmbedding(t.SymbolID, t.FilePath, vec)
	}
}
