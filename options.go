package desim

// engineOptions holds configuration shared by Engine and its specializations.
type engineOptions struct {
	logger Logger
}

func defaultEngineOptions() engineOptions {
	return engineOptions{logger: NewNoOpLogger()}
}

// EngineOption configures an [Engine] (or a [ReplicationsEngine] /
// [BatchMeansEngine], which embed one) at construction time.
type EngineOption interface {
	applyEngine(*engineOptions)
}

type engineOptionFunc func(*engineOptions)

func (f engineOptionFunc) applyEngine(o *engineOptions) { f(o) }

// WithLogger configures the [Logger] the engine uses for warning-level
// anomalies. The default is a no-op logger.
func WithLogger(logger Logger) EngineOption {
	return engineOptionFunc(func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	})
}

func resolveEngineOptions(opts []EngineOption) engineOptions {
	cfg := defaultEngineOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyEngine(&cfg)
	}
	return cfg
}

// replicationsOptions holds configuration specific to [ReplicationsEngine].
type replicationsOptions struct {
	minReplicationDuration float64
	minNumReplications     int
}

// ReplicationsEngineOption configures a [ReplicationsEngine] at construction
// time, in addition to any [EngineOption] values.
type ReplicationsEngineOption interface {
	applyReplications(*replicationsOptions)
}

type replicationsOptionFunc func(*replicationsOptions)

func (f replicationsOptionFunc) applyReplications(o *replicationsOptions) { f(o) }

// WithMinReplicationDuration sets the minimum simulated duration of every
// replication: a replication never ends before
// now-at-begin + d, regardless of what the monitored statistics report.
func WithMinReplicationDuration(d float64) ReplicationsEngineOption {
	return replicationsOptionFunc(func(o *replicationsOptions) {
		o.minReplicationDuration = d
	})
}

// WithMinNumReplications sets the floor on the number of replications the
// engine performs before honouring global termination.
func WithMinNumReplications(n int) ReplicationsEngineOption {
	return replicationsOptionFunc(func(o *replicationsOptions) {
		o.minNumReplications = n
	})
}

func resolveReplicationsOptions(opts []ReplicationsEngineOption) replicationsOptions {
	cfg := replicationsOptions{minNumReplications: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyReplications(&cfg)
	}
	return cfg
}

// batchMeansOptions holds configuration specific to [BatchMeansEngine].
type batchMeansOptions struct{}

// BatchMeansEngineOption configures a [BatchMeansEngine] at construction
// time, in addition to any [EngineOption] values. Reserved for future
// batch-means-specific tunables; present now so the constructor signature is
// stable as the monolithic-run variant grows options of its own.
type BatchMeansEngineOption interface {
	applyBatchMeans(*batchMeansOptions)
}

func resolveBatchMeansOptions(opts []BatchMeansEngineOption) batchMeansOptions {
	cfg := batchMeansOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyBatchMeans(&cfg)
	}
	return cfg
}
