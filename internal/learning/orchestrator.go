package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/newsintel/internal/config"
	"github.com/aristath/newsintel/internal/repository"
)

const tunedParamsKeyPrefix = "learning:tuned_params:"

func tunedParamsKey(sourceID string) string {
	return tunedParamsKeyPrefix + sourceID
}

// tunedParamsTTL is generous relative to the default hourly cycle
// interval: applied parameters survive several missed cycles and expire
// six hours after the last cycle that wrote them.
const tunedParamsTTL = 6 * time.Hour

// Orchestrator runs learning cycles on a schedule (spec.md 4.8,
// cron-shaped like the teacher's trader scheduler), gathering tuned
// parameters from the AutoTuner and applying them atomically through the
// KV cache that source-facing components read from.
type Orchestrator struct {
	tuner *AutoTuner
	kv    repository.KVCache
	mode  config.LearningMode
	log   zerolog.Logger

	cron *cron.Cron
}

// NewOrchestrator builds an orchestrator. kv may be nil, in which case
// learning cycles run (useful for metrics/feedback bookkeeping) but never
// persist tuned parameters.
func NewOrchestrator(tuner *AutoTuner, kv repository.KVCache, mode config.LearningMode, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		tuner: tuner,
		kv:    kv,
		mode:  mode,
		log:   log.With().Str("component", "learning_orchestrator").Logger(),
		cron:  cron.New(),
	}
}

// Start schedules RunCycle every interval (default hourly, spec.md 4.8)
// and starts the underlying cron runner. Call Stop to shut down cleanly.
func (o *Orchestrator) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	spec := fmt.Sprintf("@every %s", interval)
	_, err := o.cron.AddFunc(spec, func() {
		if err := o.RunCycle(ctx); err != nil {
			o.log.Error().Err(err).Msg("learning cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule learning cycle: %w", err)
	}
	o.cron.Start()
	o.log.Info().Str("interval", interval.String()).Str("mode", string(o.mode)).Msg("learning orchestrator started")
	return nil
}

// Stop drains any in-flight cycle and halts the scheduler.
func (o *Orchestrator) Stop() {
	stopCtx := o.cron.Stop()
	<-stopCtx.Done()
	o.log.Info().Msg("learning orchestrator stopped")
}

// RunCycle computes tuned parameters for every observed source and, in
// active mode, applies them. Shadow mode computes and logs without
// writing, letting operators compare proposed vs. current parameters
// before trusting the system to act on its own. Off mode is a no-op.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	if o.mode == config.LearningOff {
		return nil
	}

	updates := o.tuner.TuneAll()
	if o.mode == config.LearningShadow {
		for _, u := range updates {
			o.log.Debug().Str("source_id", u.SourceID).Dur("ttl", u.TTL).
				Float64("quality_threshold", u.QualityThreshold).
				Float64("detection_threshold", u.DetectionThreshold).
				Msg("shadow mode: computed tuned parameters, not applied")
		}
		return nil
	}

	applied := 0
	for _, u := range updates {
		if err := o.apply(ctx, u); err != nil {
			o.log.Error().Err(err).Str("source_id", u.SourceID).Msg("failed to apply tuned parameters")
			continue
		}
		applied++
	}
	o.log.Info().Int("sources", len(updates)).Int("applied", applied).Msg("learning cycle complete")
	return nil
}

func (o *Orchestrator) apply(ctx context.Context, u TunedParameters) error {
	if o.kv == nil {
		return nil
	}
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal tuned parameters: %w", err)
	}
	return o.kv.Set(ctx, tunedParamsKey(u.SourceID), payload, tunedParamsTTL)
}

// Lookup reads back the last applied tuned parameters for a source, for
// components (scraper, detectors) that want to honour them.
func Lookup(ctx context.Context, kv repository.KVCache, sourceID string) (TunedParameters, bool, error) {
	raw, ok, err := kv.Get(ctx, tunedParamsKey(sourceID))
	if err != nil || !ok {
		return TunedParameters{}, false, err
	}
	var params TunedParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return TunedParameters{}, false, fmt.Errorf("decode tuned parameters: %w", err)
	}
	return params, true, nil
}
