package desim

import (
	"github.com/joeycumines/go-desim/stat"
)

// BatchMeansEngine specializes [Engine] with the Batch Means method: a
// single monolithic run, with no replication lifecycle, whose statistics
// gate their own transient removal and batch-size selection internally
// ([analyze.BatchMeansStatistic]) and whose global termination is the
// logical AND of every registered statistic reporting target precision
// reached.
type BatchMeansEngine struct {
	*Engine
	options      batchMeansOptions
	monitorWired bool
}

// NewBatchMeansEngine constructs a [BatchMeansEngine].
func NewBatchMeansEngine(engineOpts []EngineOption, bmOpts ...BatchMeansEngineOption) *BatchMeansEngine {
	return &BatchMeansEngine{
		Engine:  NewEngine(engineOpts...),
		options: resolveBatchMeansOptions(bmOpts),
	}
}

// Run drives the dispatch loop exactly as [Engine.Run] does, but additionally
// stops as soon as every registered, enabled statistic reports target
// precision reached (or the future-event set empties first, or a configured
// stop condition fires first).
func (b *BatchMeansEngine) Run() error {
	if b.Engine.running {
		return ErrEngineAlreadyRunning
	}

	if !b.monitorWired {
		b.Engine.RegisterMonitor(func(ctx EngineContext) {
			if b.allStatisticsConverged() {
				b.Engine.StopNow()
			}
		})
		b.monitorWired = true
	}

	return b.Engine.Run()
}

func (b *BatchMeansEngine) allStatisticsConverged() bool {
	if len(b.Engine.statOrder) == 0 {
		return false
	}
	anyEnabled := false
	for _, cat := range b.Engine.statOrder {
		s := b.Engine.stats[cat]
		if !s.Enabled() {
			continue
		}
		anyEnabled = true
		as, ok := s.(stat.AnalyzableStatistic)
		if !ok || !as.TargetPrecisionReached() {
			return false
		}
	}
	return anyEnabled
}
