// Package runtime owns the fill-merge-validate-publish pipeline: the tick
// scheduler, the per-run executor, and the cached runtime state.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhytabest/plashboard/internal/config"
	"github.com/jhytabest/plashboard/internal/fill"
	"github.com/jhytabest/plashboard/internal/jsonptr"
	"github.com/jhytabest/plashboard/internal/logging"
	"github.com/jhytabest/plashboard/internal/models"
	"github.com/jhytabest/plashboard/internal/publish"
	"github.com/jhytabest/plashboard/internal/store"
)

// Runtime errors.
var (
	ErrAlreadyRunning = errors.New("runtime already running")
	ErrNotRunning     = errors.New("runtime not running")
)

// Runtime is the single stateful object that owns a data directory.
type Runtime struct {
	cfg        *config.Config
	templates  *store.TemplateStore
	stateStore *store.StateStore
	runs       *store.RunStore
	runner     fill.Runner
	publisher  *publish.Publisher
	logger     zerolog.Logger

	// mu guards the state cache, the in-flight set, and lifecycle flags.
	mu       sync.Mutex
	state    *models.State
	inFlight map[string]struct{}
	running  bool
	initDone bool

	// tickMu enforces tick non-reentrancy.
	tickMu sync.Mutex

	cancel context.CancelFunc
	loopWG sync.WaitGroup
	runsWG sync.WaitGroup

	// Overridable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New wires a runtime from resolved configuration.
func New(cfg *config.Config) (*Runtime, error) {
	runner, err := newRunner(cfg)
	if err != nil {
		return nil, err
	}

	sessionTimeout := time.Duration(cfg.SessionTimeoutSeconds) * time.Second
	publisher := publish.New(
		cfg.PythonBin,
		cfg.WriterScriptPath(),
		cfg.OutputPath(),
		sessionTimeout,
		cfg.LayoutOverflowTolerancePx,
	)

	return &Runtime{
		cfg:        cfg,
		templates:  store.NewTemplateStore(cfg.DataDir),
		stateStore: store.NewStateStore(cfg.DataDir),
		runs:       store.NewRunStore(cfg.DataDir),
		runner:     runner,
		publisher:  publisher,
		logger:     logging.Component("runtime"),
		inFlight:   make(map[string]struct{}),
		now:        func() time.Time { return time.Now().UTC() },
		sleep:      sleepCtx,
	}, nil
}

func newRunner(cfg *config.Config) (fill.Runner, error) {
	sessionTimeout := time.Duration(cfg.SessionTimeoutSeconds) * time.Second
	switch cfg.FillProvider {
	case config.ProviderMock:
		return fill.NewMockRunner(), nil
	case config.ProviderCommand:
		return fill.NewCommandRunner(cfg.FillCommand, sessionTimeout, cfg.AllowFillCommand), nil
	case config.ProviderOpenclaw:
		return fill.NewAgentRunner(cfg.OpenclawBin, cfg.OpenclawFillAgentID, sessionTimeout), nil
	default:
		return nil, models.NewPipelineError(models.KindConfigInvalid, "unknown fill provider %q", cfg.FillProvider)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Init prepares the data directory and the state cache. Idempotent.
func (r *Runtime) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initDone {
		return nil
	}

	if err := r.cfg.EnsureDirectories(); err != nil {
		return err
	}

	state, err := r.stateStore.Load()
	if err != nil {
		return err
	}
	r.state = state

	dirty := false
	if r.state.DisplayProfile == nil {
		profile := r.cfg.DisplayProfile
		profile.Clamp()
		r.state.DisplayProfile = &profile
		dirty = true
	}

	seeded, err := r.maybeSeedTemplateLocked()
	if err != nil {
		return err
	}
	if seeded || dirty {
		if err := r.stateStore.Save(r.state); err != nil {
			return err
		}
	}

	r.initDone = true
	r.logger.Info().Str("data_dir", r.cfg.DataDir).Msg("runtime initialized")
	return nil
}

// maybeSeedTemplateLocked seeds a starter template from an existing live
// dashboard file when the template store is empty. Caller holds mu.
func (r *Runtime) maybeSeedTemplateLocked() (bool, error) {
	if !r.cfg.AutoSeedTemplate {
		return false, nil
	}

	existing, err := r.templates.List()
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	var live map[string]any
	if err := store.ReadJSON(r.cfg.OutputPath(), &live); err != nil {
		// No readable live dashboard means nothing to seed from.
		return false, nil
	}

	tpl := starterTemplate(live)
	if err := r.templates.Upsert(tpl); err != nil {
		return false, err
	}
	r.state.ActiveTemplateID = tpl.ID

	r.logger.Info().Str("template_id", tpl.ID).Msg("seeded starter template from live dashboard")
	return true, nil
}

func starterTemplate(live map[string]any) *models.Template {
	maxLen := 280
	fields := []models.FieldSpec{}
	if _, err := jsonptr.Read(live, "/summary"); err == nil {
		fields = append(fields, models.FieldSpec{
			ID:          "summary",
			Pointer:     "/summary",
			Type:        models.FieldTypeString,
			Prompt:      "One-paragraph summary of the current status.",
			Constraints: &models.Constraints{MaxLen: &maxLen},
		})
	}
	if _, err := jsonptr.Read(live, "/generated_at"); err == nil {
		fields = append(fields, models.FieldSpec{
			ID:      "generated_at",
			Pointer: "/generated_at",
			Type:    models.FieldTypeString,
			Prompt:  "Current UTC timestamp in ISO-8601 format.",
		})
	}

	return &models.Template{
		ID:      "starter",
		Name:    "Starter Dashboard",
		Enabled: true,
		Schedule: models.Schedule{
			Mode:         models.ScheduleModeInterval,
			EveryMinutes: 30,
			Timezone:     "UTC",
		},
		BaseDashboard: live,
		Fields:        fields,
	}
}

// Start schedules ticks and dispatches one immediately.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.Init(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	interval := time.Duration(r.cfg.SchedulerTickSeconds) * time.Second
	r.logger.Info().
		Dur("tick_interval", interval).
		Int("max_parallel_runs", r.cfg.MaxParallelRuns).
		Msg("scheduler starting")

	r.loopWG.Add(1)
	go r.runLoop(loopCtx, interval)

	return nil
}

// Stop cancels future ticks and waits for in-flight runs to finish.
func (r *Runtime) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.loopWG.Wait()
	r.runsWG.Wait()

	r.logger.Info().Msg("scheduler stopped")
	return nil
}

func (r *Runtime) runLoop(ctx context.Context, interval time.Duration) {
	defer r.loopWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One immediate tick after start.
	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick performs one scheduling cycle. Reentrancy is forbidden: a tick that
// arrives while another is running returns immediately.
func (r *Runtime) tick(ctx context.Context) {
	if !r.tickMu.TryLock() {
		r.logger.Debug().Msg("tick skipped: previous tick still running")
		return
	}
	defer r.tickMu.Unlock()

	templates, err := r.templates.List()
	if err != nil {
		r.logger.Error().Err(err).Msg("tick failed to list templates")
		return
	}

	r.mu.Lock()
	state, err := r.snapshotStateLocked()
	if err != nil {
		r.mu.Unlock()
		r.logger.Error().Err(err).Msg("tick failed to load state")
		return
	}
	inFlight := make(map[string]struct{}, len(r.inFlight))
	for id := range r.inFlight {
		inFlight[id] = struct{}{}
	}
	r.mu.Unlock()

	result := DecideTick(TickInput{
		Templates:       templates,
		State:           state,
		InFlight:        inFlight,
		Now:             r.now(),
		MaxParallelRuns: r.cfg.MaxParallelRuns,
	})

	for id, reason := range result.Blocked {
		r.logger.Debug().Str("template_id", id).Str("reason", string(reason)).Msg("template not scheduled")
	}

	byID := make(map[string]*models.Template, len(templates))
	for _, tpl := range templates {
		byID[tpl.ID] = tpl
	}

	for _, id := range result.Due {
		tpl := byID[id]
		if tpl == nil {
			continue
		}
		r.launch(tpl, models.RunTriggerSchedule)
	}
}

// launch starts a run in the background. The tick does not await it.
func (r *Runtime) launch(tpl *models.Template, trigger models.RunTrigger) {
	r.mu.Lock()
	if _, busy := r.inFlight[tpl.ID]; busy {
		r.mu.Unlock()
		return
	}
	r.inFlight[tpl.ID] = struct{}{}
	r.mu.Unlock()

	r.runsWG.Add(1)
	go func() {
		defer r.runsWG.Done()
		defer r.clearInFlight(tpl.ID)
		// Runs are bounded by their own subprocess timeouts; a stop
		// request does not cancel them.
		r.executeRun(context.Background(), tpl, trigger)
	}()
}

func (r *Runtime) clearInFlight(id string) {
	r.mu.Lock()
	delete(r.inFlight, id)
	r.mu.Unlock()
}

// RunNow executes a template immediately, bypassing the due-time gate. It
// still respects the per-template in-flight set.
func (r *Runtime) RunNow(ctx context.Context, templateID string) (*models.RunArtifact, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}

	tpl, err := r.templates.Get(templateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, templateID)
	}

	r.mu.Lock()
	if _, busy := r.inFlight[templateID]; busy {
		r.mu.Unlock()
		now := models.FormatTimestamp(r.now())
		return &models.RunArtifact{
			TemplateID:   templateID,
			Trigger:      models.RunTriggerManual,
			Status:       models.RunStatusFailed,
			StartedAt:    now,
			FinishedAt:   now,
			AttemptCount: 0,
			Errors:       []string{"run already in progress"},
		}, models.ErrRunInProgress
	}
	r.inFlight[templateID] = struct{}{}
	r.mu.Unlock()

	defer r.clearInFlight(templateID)
	r.runsWG.Add(1)
	defer r.runsWG.Done()

	return r.executeRun(ctx, tpl, models.RunTriggerManual), nil
}

// InFlight returns the ids of templates currently running, sorted.
func (r *Runtime) InFlight() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.inFlight))
	for id := range r.inFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mutateState applies fn to the cached state and persists it before
// releasing the lock. The cache is the single in-memory source of truth.
func (r *Runtime) mutateState(fn func(*models.State)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutateStateLocked(fn)
}

func (r *Runtime) mutateStateLocked(fn func(*models.State)) error {
	if r.state == nil {
		state, err := r.stateStore.Load()
		if err != nil {
			return err
		}
		r.state = state
	}
	fn(r.state)
	return r.stateStore.Save(r.state)
}

// snapshotState returns a deep copy of the cached state.
func (r *Runtime) snapshotState() (*models.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotStateLocked()
}

func (r *Runtime) snapshotStateLocked() (*models.State, error) {
	if r.state == nil {
		state, err := r.stateStore.Load()
		if err != nil {
			return nil, err
		}
		r.state = state
	}
	copied := *r.state
	copied.TemplateRuns = make(map[string]*models.RunState, len(r.state.TemplateRuns))
	for id, rs := range r.state.TemplateRuns {
		c := *rs
		copied.TemplateRuns[id] = &c
	}
	if r.state.DisplayProfile != nil {
		p := *r.state.DisplayProfile
		copied.DisplayProfile = &p
	}
	return &copied, nil
}

// effectiveProfile resolves the display profile: state override first,
// config default otherwise.
func (r *Runtime) effectiveProfile() models.DisplayProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != nil && r.state.DisplayProfile != nil {
		return *r.state.DisplayProfile
	}
	profile := r.cfg.DisplayProfile
	profile.Clamp()
	return profile
}
