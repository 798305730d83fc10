package explorer

import (
	"fmt"
	"sync"

	"corrlab/adapters/stats/engine"
	"corrlab/domain/core"
	"corrlab/domain/sample"
	"corrlab/domain/stats"
	"corrlab/internal"
	"corrlab/ports"
)

// Observer receives every committed snapshot. Observers run synchronously
// after the commit and must not call mutating Explorer methods.
type Observer func(Snapshot)

// Explorer owns the parameters, the current sample and its derived
// statistics, and the display mode. Each mutation builds a complete new
// Snapshot and swaps it in, so readers always see a consistent view.
type Explorer struct {
	cfg    Config
	synth  ports.SampleSynthesizer
	engine *engine.StatsEngine
	logger *internal.Logger

	// writeMu serializes mutations and their notifications
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Snapshot

	obsMu     sync.RWMutex
	observers map[core.SubscriptionID]Observer
	order     []core.SubscriptionID
}

// Option configures an Explorer
type Option func(*Explorer)

// WithLogger sets the logger used for state transitions
func WithLogger(logger *internal.Logger) Option {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStatsEngine overrides the statistics engine
func WithStatsEngine(eng *engine.StatsEngine) Option {
	return func(e *Explorer) {
		if eng != nil {
			e.engine = eng
		}
	}
}

// New validates cfg and builds the initial Baseline snapshot from a freshly
// generated sample at the default correlation and initial size
func New(cfg Config, synth ports.SampleSynthesizer, opts ...Option) (*Explorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid explorer config: %w", err)
	}
	if synth == nil {
		return nil, fmt.Errorf("explorer requires a sample synthesizer")
	}

	e := &Explorer{
		cfg:       cfg,
		synth:     synth,
		engine:    engine.NewStatsEngine(),
		logger:    internal.DefaultLogger.WithComponent("explorer"),
		observers: make(map[core.SubscriptionID]Observer),
	}
	for _, opt := range opts {
		opt(e)
	}

	params := sample.Parameters{
		TargetCorrelation: cfg.DefaultCorrelation,
		SampleSize:        cfg.InitialSampleSize,
	}
	e.current = e.generate(0, params)
	e.logger.Info("initialized: r=%.2f n=%d range=[%g, %g] baseline=%s policy=%s",
		params.TargetCorrelation, params.SampleSize, cfg.RangeMin, cfg.RangeMax, cfg.BaselineMode, cfg.InputPolicy)
	return e, nil
}

// Config returns the bounds the explorer was built with
func (e *Explorer) Config() Config {
	return e.cfg
}

// SetCorrelation sets the target correlation, regenerates the sample and
// returns to Baseline. Out-of-range values are clamped or rejected per the
// configured InputPolicy; NaN is always rejected. A rejected call leaves
// the state untouched.
func (e *Explorer) SetCorrelation(r float64) (Snapshot, error) {
	normalized, err := e.cfg.normalizeCorrelation(r)
	if err != nil {
		e.logger.Warn("rejected correlation %v: %v", r, err)
		return e.Snapshot(), err
	}
	if normalized != r {
		e.logger.Debug("clamped correlation %v to %v", r, normalized)
	}

	return e.commit(func(prev Snapshot) Snapshot {
		params := prev.Parameters
		params.TargetCorrelation = normalized
		return e.generate(prev.Revision+1, params)
	}), nil
}

// SetSampleSize sets the sample size, regenerates the sample and returns to
// Baseline. Out-of-range values are clamped or rejected per InputPolicy.
func (e *Explorer) SetSampleSize(n int) (Snapshot, error) {
	normalized, err := e.cfg.normalizeSampleSize(n)
	if err != nil {
		e.logger.Warn("rejected sample size %d: %v", n, err)
		return e.Snapshot(), err
	}
	if normalized != n {
		e.logger.Debug("clamped sample size %d to %d", n, normalized)
	}

	return e.commit(func(prev Snapshot) Snapshot {
		params := prev.Parameters
		params.SampleSize = normalized
		return e.generate(prev.Revision+1, params)
	}), nil
}

// Resample draws a new sample with the current parameters and returns to Baseline
func (e *Explorer) Resample() Snapshot {
	return e.commit(func(prev Snapshot) Snapshot {
		return e.generate(prev.Revision+1, prev.Parameters)
	})
}

// Fit switches to Fitted mode. The sample and parameters are untouched;
// fitting twice in a row is a no-op apart from the revision bump.
func (e *Explorer) Fit() Snapshot {
	return e.commit(func(prev Snapshot) Snapshot {
		next := prev
		next.Revision = prev.Revision + 1
		next.Mode = sample.Fitted
		return next
	})
}

// Snapshot returns the current committed state
func (e *Explorer) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Parameters returns the current generation parameters
func (e *Explorer) Parameters() sample.Parameters {
	return e.Snapshot().Parameters
}

// Mode returns the current display mode
func (e *Explorer) Mode() sample.DisplayMode {
	return e.Snapshot().Mode
}

// Sample returns the current points
func (e *Explorer) Sample() sample.Sample {
	return e.Snapshot().Sample
}

// Regression returns the least-squares fit of the current sample
func (e *Explorer) Regression() stats.Regression {
	return e.Snapshot().Regression
}

// Correlation returns the realized correlation of the current sample
func (e *Explorer) Correlation() float64 {
	return e.Snapshot().Correlation
}

// DisplayedLine returns the line the presentation should draw
func (e *Explorer) DisplayedLine() stats.Line {
	return e.Snapshot().DisplayedLine()
}

// Residuals returns one segment per point, measured against the fitted line
func (e *Explorer) Residuals() []sample.ResidualSegment {
	return e.Snapshot().Residuals()
}

// Summary returns the descriptive statistics of the current sample
func (e *Explorer) Summary() stats.Summary {
	return e.Snapshot().Summary
}

// Subscribe registers fn to receive every future snapshot
func (e *Explorer) Subscribe(fn Observer) core.SubscriptionID {
	id := core.NewSubscriptionID()
	e.obsMu.Lock()
	e.observers[id] = fn
	e.order = append(e.order, id)
	e.obsMu.Unlock()
	e.logger.Debug("observer %s subscribed", id)
	return id
}

// Unsubscribe removes an observer; unknown ids are ignored
func (e *Explorer) Unsubscribe(id core.SubscriptionID) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	if _, ok := e.observers[id]; !ok {
		return
	}
	delete(e.observers, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
	e.logger.Debug("observer %s unsubscribed", id)
}

// commit derives the next snapshot from the current one, publishes it and
// then notifies observers in subscription order
func (e *Explorer) commit(next func(prev Snapshot) Snapshot) Snapshot {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	snap := next(e.Snapshot())

	e.mu.Lock()
	e.current = snap
	e.mu.Unlock()

	e.logger.Debug("rev %d: r=%.2f n=%d mode=%s realized=%.3f",
		snap.Revision, snap.Parameters.TargetCorrelation, snap.Parameters.SampleSize, snap.Mode, snap.Correlation)
	e.notify(snap)
	return snap
}

func (e *Explorer) notify(snap Snapshot) {
	e.obsMu.RLock()
	observers := make([]Observer, 0, len(e.order))
	for _, id := range e.order {
		observers = append(observers, e.observers[id])
	}
	e.obsMu.RUnlock()

	for _, fn := range observers {
		fn(snap)
	}
}

// generate draws a sample for params and derives its statistics. The
// result is always in Baseline mode.
func (e *Explorer) generate(revision uint64, params sample.Parameters) Snapshot {
	s := e.synth.Generate(params.TargetCorrelation, params.SampleSize, e.cfg.RangeMin, e.cfg.RangeMax)
	analysis := e.engine.Analyze(s, params.TargetCorrelation)
	return Snapshot{
		Revision:     revision,
		Parameters:   params,
		Mode:         sample.Baseline,
		BaselineMode: e.cfg.BaselineMode,
		RangeMin:     e.cfg.RangeMin,
		RangeMax:     e.cfg.RangeMax,
		Sample:       s,
		Correlation:  analysis.Correlation,
		Regression:   analysis.Regression,
		Summary:      analysis.Summary,
		GeneratedAt:  core.Now(),
	}
}
