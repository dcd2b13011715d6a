package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"city-deployer-service/internal/config"
	"city-deployer-service/internal/domain"
	"city-deployer-service/internal/platform/obs"
	"city-deployer-service/internal/ports"
)

// Orchestrator drives the per-city pipeline in strict input order:
// Resolve, Aggregate, Render, Publish. Cities are independent; one
// city's failure is recorded and never stops the rest of the run.
// A mandatory delay separates successive cities, and the run can be
// stopped between cities via context cancellation.
type Orchestrator struct {
	resolver   *Resolver
	aggregator *Aggregator
	renderer   *Renderer
	publisher  *Publisher
	recorder   ports.RunRecorder
	cityPace   ports.Pacer
	template   []byte
	cfg        config.Config
	log        *zap.Logger
}

func NewOrchestrator(
	resolver *Resolver,
	aggregator *Aggregator,
	renderer *Renderer,
	publisher *Publisher,
	recorder ports.RunRecorder,
	cityPacer ports.Pacer,
	template []byte,
	cfg config.Config,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		resolver:   resolver,
		aggregator: aggregator,
		renderer:   renderer,
		publisher:  publisher,
		recorder:   recorder,
		cityPace:   cityPacer,
		template:   template,
		cfg:        cfg,
		log:        log,
	}
}

// Run processes every request in order and returns an error only for
// run-fatal conditions (missing credential, cancellation).
func (o *Orchestrator) Run(ctx context.Context, reqs []domain.CityRequest) error {
	runID := uuid.NewString()
	log := o.log.With(zap.String("run_id", runID))

	// Verify the credential up front; a missing credential aborts the
	// run before any city is touched.
	owner, err := o.publisher.Owner(ctx)
	if err != nil {
		o.record(ctx, log, domain.RunRecord{
			RunID:  runID,
			City:   "*",
			Status: domain.StatusFatal,
			Reason: err.Error(),
		})
		return fmt.Errorf("run %s: %w", runID, err)
	}

	log.Info("starting run",
		zap.String("owner", owner),
		zap.Int("cities", len(reqs)),
		zap.String("config_version", o.cfg.Version))

	var succeeded, failed int
	for _, req := range reqs {
		// The pacer's first wait is free, so the first city starts
		// immediately and each later city waits the full interval.
		if err := o.cityPace.Pace(ctx); err != nil {
			return fmt.Errorf("run %s: stopped between cities: %w", runID, err)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run %s: stopped between cities: %w", runID, err)
		}

		rec := domain.RunRecord{
			RunID:       runID,
			City:        req.Raw,
			Destination: DestinationName(req, o.cfg.RepoPrefix, o.cfg.RepoSuffix),
			CompletedAt: time.Now().UTC(),
		}

		if err := o.deployCity(ctx, req); err != nil {
			failed++
			rec.Status = domain.StatusFailed
			rec.Reason = err.Error()
			log.Error("city deployment failed", zap.String("city", req.Raw), zap.Error(err))
		} else {
			succeeded++
			rec.Status = domain.StatusSucceeded
			log.Info("city deployment complete", zap.String("city", req.Raw))
		}
		rec.CompletedAt = time.Now().UTC()
		o.record(ctx, log, rec)
	}

	log.Info("run complete", zap.Int("succeeded", succeeded), zap.Int("failed", failed))
	return nil
}

// deployCity runs the full pipeline for one city. Panics are converted
// to errors at this boundary so a single city cannot take down the run.
func (o *Orchestrator) deployCity(ctx context.Context, req domain.CityRequest) (err error) {
	defer obs.Time(o.log, "orchestrator.deployCity")(&err)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deploy %s: panic: %v", req.Name, r)
		}
	}()

	loc := o.resolver.Resolve(ctx, req)
	bundle := o.aggregator.Aggregate(ctx, loc, req)

	owner, err := o.publisher.Owner(ctx)
	if err != nil {
		return err
	}
	site := SiteInfo{
		Owner: owner,
		Repo:  DestinationName(req, o.cfg.RepoPrefix, o.cfg.RepoSuffix),
	}

	artifact, _ := o.renderer.Render(o.template, bundle, req, site)

	if _, err := o.publisher.Publish(ctx, req, artifact); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, log *zap.Logger, rec domain.RunRecord) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, rec); err != nil {
		log.Warn("run record write failed", zap.String("city", rec.City), zap.Error(err))
	}
}
