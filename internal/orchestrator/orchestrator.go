package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"videogenhost/internal/comfy"
	"videogenhost/internal/domain"
	"videogenhost/internal/infra"
	"videogenhost/internal/jobs"
	"videogenhost/internal/storage"
	"videogenhost/internal/workflow"
)

// Timeouts bounds each backend interaction so a wedged backend cannot leak
// goroutines forever.
type Timeouts struct {
	Submit   time.Duration
	Progress time.Duration
	Fetch    time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Submit <= 0 {
		t.Submit = 10 * time.Minute
	}
	if t.Progress <= 0 {
		t.Progress = 30 * time.Minute
	}
	if t.Fetch <= 0 {
		t.Fetch = 2 * time.Minute
	}
	return t
}

// Orchestrator drives one generation job end to end: build payload, submit,
// follow the progress channel to exhaustion, fetch the result artifact, persist
// it, and record the terminal state. One goroutine per job; no retries — a
// single failure is terminal.
type Orchestrator struct {
	client   *comfy.Client
	registry *jobs.Registry
	store    *storage.VideoStore
	template *workflow.Template
	logger   infra.Logger
	timeouts Timeouts
	wg       sync.WaitGroup
}

// New wires an orchestrator from its collaborators.
func New(client *comfy.Client, registry *jobs.Registry, store *storage.VideoStore, template *workflow.Template, logger infra.Logger, timeouts Timeouts) *Orchestrator {
	return &Orchestrator{
		client:   client,
		registry: registry,
		store:    store,
		template: template,
		logger:   logger,
		timeouts: timeouts.withDefaults(),
	}
}

// Launch registers a pending job and spawns its background run. It returns
// immediately; the caller's HTTP response never waits on generation.
func (o *Orchestrator) Launch(jobID, prompt string) {
	o.registry.Create(jobID)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			// A panicked run must still leave the job in a terminal state
			// instead of wedging it at pending forever.
			if rec := recover(); rec != nil {
				o.logger.Error().Str("job_id", jobID).Any("panic", rec).Msg("orchestrator: run panicked")
				o.fail(jobID)
			}
		}()
		o.run(jobID, prompt)
	}()
}

// Wait blocks until every launched job has reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(jobID, prompt string) {
	graph, err := o.template.Build(prompt)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: payload build failed")
		o.fail(jobID)
		return
	}

	clientID := uuid.NewString()

	submitCtx, cancelSubmit := context.WithTimeout(context.Background(), o.timeouts.Submit)
	promptID, err := o.client.Submit(submitCtx, graph, clientID)
	cancelSubmit()
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: submit failed")
		o.fail(jobID)
		return
	}
	o.logger.Info().Str("job_id", jobID).Str("prompt_id", promptID).Msg("orchestrator: submitted")

	progressCtx, cancelProgress := context.WithTimeout(context.Background(), o.timeouts.Progress)
	err = o.client.TrackProgress(progressCtx, clientID, promptID, func(progress *comfy.ProgressEvent, executing *comfy.ExecutingEvent, _ *comfy.CachedEvent) {
		switch {
		case progress != nil:
			o.registry.MarkRunning(jobID)
			o.logger.Debug().Str("job_id", jobID).Int("step", progress.Value).Int("max", progress.Max).Msg("orchestrator: progress")
		case executing != nil && executing.Node != nil:
			o.registry.MarkRunning(jobID)
		}
	})
	cancelProgress()
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: progress tracking failed")
		o.fail(jobID)
		return
	}

	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), o.timeouts.Fetch)
	defer cancelFetch()

	refs, err := o.client.FetchOutputs(fetchCtx, promptID, false)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: fetch outputs failed")
		o.fail(jobID)
		return
	}
	ref := refs[0]

	data, err := o.client.Download(fetchCtx, ref)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: download failed")
		o.fail(jobID)
		return
	}

	filename := uuid.NewString() + ref.Ext()
	saved, err := o.store.Write(filename, data)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: persist failed")
		o.fail(jobID)
		return
	}

	// The file is fully on disk before the registry ever names it.
	if err := o.registry.SetTerminal(jobID, domain.JobStatusComplete, saved); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: terminal write failed")
		return
	}
	o.logger.Info().Str("job_id", jobID).Str("filename", saved).Msg("orchestrator: job complete")
}

func (o *Orchestrator) fail(jobID string) {
	if err := o.registry.SetTerminal(jobID, domain.JobStatusError, ""); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("orchestrator: failed to record error state")
	}
}
