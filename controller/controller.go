// Package controller orchestrates the configuration change workflow:
// validate, diff, cancellable pre-notify, apply to the broker, commit to the
// version store, post-notify.
//
// One controller owns exactly one logical current configuration. The whole
// pipeline runs under a single exclusive region, so applies are serialized and
// a second caller can never observe a stale current.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/natsconf/diff"
	"github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/metric"
	"github.com/c360/natsconf/types"
	"github.com/c360/natsconf/validate"
	"github.com/c360/natsconf/version"
)

// Broker is the external collaborator that applies a configuration to the
// running process and reports its runtime state.
type Broker interface {
	Reconfigure(ctx context.Context, cfg *types.Configuration) error
	RuntimeInfo(ctx context.Context) (*types.RuntimeInfo, error)
}

// ChangeProposal is handed to pre-change subscribers before an apply proceeds.
type ChangeProposal struct {
	Current  *types.Configuration
	Proposed *types.Configuration
	Diff     *types.Diff
}

// ProposeFunc inspects a proposal. Returning a non-nil error rejects the
// change; its message becomes the cancellation reason.
type ProposeFunc func(ChangeProposal) error

// AppliedChange is handed to post-change subscribers after a commit.
type AppliedChange struct {
	OldVersion *types.ConfigurationVersion
	NewVersion *types.ConfigurationVersion
	Diff       *types.Diff
}

// AppliedFunc observes a committed change. Failures in an observer never
// unwind the committed state.
type AppliedFunc func(AppliedChange)

// CancelChange builds the rejection a pre-change subscriber returns to veto a
// proposal.
func CancelChange(reason string) error {
	return errors.WrapInvalid(errors.ErrChangeCancelled, "Subscriber", "ProposeChange", reason)
}

// Result is the uniform outcome of every apply and rollback attempt. All
// failure modes (invalid, cancelled, apply failed, not found) share this
// shape.
type Result struct {
	Success    bool
	Message    string
	Validation *types.ValidationResult
	Diff       *types.Diff
	Version    *types.ConfigurationVersion
}

func failure(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Controller drives the configuration change workflow against one broker.
type Controller struct {
	mu             sync.Mutex
	current        *types.Configuration
	currentVersion *types.ConfigurationVersion

	broker    Broker
	validator *validate.Validator
	store     *version.Store
	appliedBy string

	pre  []ProposeFunc
	post []AppliedFunc

	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithValidator overrides the default validator.
func WithValidator(v *validate.Validator) Option {
	return func(c *Controller) { c.validator = v }
}

// WithStore overrides the default version store.
func WithStore(s *version.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithAppliedBy attributes saved versions to the given principal.
func WithAppliedBy(who string) Option {
	return func(c *Controller) { c.appliedBy = who }
}

// New creates a controller owning the given initial configuration. The
// initial configuration is persisted as version 1 with change type Initial.
func New(initial *types.Configuration, broker Broker, opts ...Option) (*Controller, error) {
	if initial == nil {
		return nil, errors.WrapInvalid(errors.ErrNilConfig, "Controller", "New", "check initial configuration")
	}
	if broker == nil {
		return nil, errors.WrapInvalid(errors.ErrNoConnection, "Controller", "New", "check broker")
	}

	c := &Controller{
		current: initial,
		broker:  broker,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		c.validator = validate.NewValidator(nil, c.logger)
	}
	if c.store == nil {
		c.store = version.NewStore()
	}

	initialVersion := &types.ConfigurationVersion{
		Config:    initial,
		AppliedAt: time.Now().UTC(),
		AppliedBy: c.appliedBy,
		Change:    types.ChangeInitial,
	}
	if err := c.store.Save(initialVersion); err != nil {
		return nil, err
	}
	c.currentVersion = initialVersion
	c.observeVersion(initialVersion)

	return c, nil
}

// Current returns a copy of the current configuration.
func (c *Controller) Current() *types.Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// CurrentVersion returns the currently applied version.
func (c *Controller) CurrentVersion() *types.ConfigurationVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentVersion
}

// Store exposes the version history.
func (c *Controller) Store() *version.Store {
	return c.store
}

// OnChangeProposed registers a pre-change subscriber. Subscribers run
// synchronously in registration order and the first rejection short-circuits
// the apply.
func (c *Controller) OnChangeProposed(fn ProposeFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre = append(c.pre, fn)
}

// OnChangeApplied registers a post-change observer, invoked after commit in
// registration order.
func (c *Controller) OnChangeApplied(fn AppliedFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.post = append(c.post, fn)
}

// ApplyChanges clones the current configuration, applies the mutator to the
// clone, and drives the validate/diff/notify/apply/commit pipeline. All
// failure modes return a failed Result; state, history, and subscribers are
// untouched on failure.
func (c *Controller) ApplyChanges(ctx context.Context, mutate func(*types.Configuration)) Result {
	if mutate == nil {
		return failure("mutator cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	proposed := c.current.Clone()
	mutate(proposed)
	return c.applyLocked(ctx, types.ChangeUpdate, proposed)
}

// Rollback re-applies the version immediately preceding the current one.
func (c *Controller) Rollback(ctx context.Context) Result {
	return c.rollback(ctx, 0)
}

// RollbackTo re-applies an explicit version number.
func (c *Controller) RollbackTo(ctx context.Context, number int) Result {
	return c.rollback(ctx, number)
}

func (c *Controller) rollback(ctx context.Context, number int) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	target, err := c.resolveRollbackTarget(number)
	if err != nil {
		c.observeOutcome(metric.OutcomeNotFound, types.ChangeRollback)
		return failure("rollback target not found: %v", err)
	}

	c.logger.Info("rolling back configuration",
		"from_version", c.currentVersion.Number,
		"to_version", target.Number)

	return c.applyLocked(ctx, types.ChangeRollback, target.Config.Clone())
}

// resolveRollbackTarget picks an explicit version, or the entry immediately
// preceding the current version when number is non-positive.
func (c *Controller) resolveRollbackTarget(number int) (*types.ConfigurationVersion, error) {
	if number > 0 {
		return c.store.GetVersion(number)
	}

	var prev *types.ConfigurationVersion
	for _, v := range c.store.GetAll() {
		if v.Number < c.currentVersion.Number && (prev == nil || v.Number > prev.Number) {
			prev = v
		}
	}
	if prev == nil {
		return nil, errors.WrapNotFound(errors.ErrVersionNotFound, "Controller", "resolveRollbackTarget",
			fmt.Sprintf("find version preceding %d", c.currentVersion.Number))
	}
	return prev, nil
}

// applyLocked runs the pipeline. The caller holds c.mu.
func (c *Controller) applyLocked(ctx context.Context, change types.ChangeType, proposed *types.Configuration) Result {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		c.observeOutcome(metric.OutcomeCancelled, change)
		return failure("apply cancelled: %v", err)
	}

	vr := c.validator.ValidateChanges(c.current, proposed)
	c.observeFindings(vr)
	if !vr.IsValid() {
		c.observeOutcome(metric.OutcomeRejected, change)
		c.logger.Warn("configuration rejected", "errors", vr.Summary())
		return Result{Message: "configuration validation failed: " + vr.Summary(), Validation: vr}
	}
	for _, w := range vr.Warnings() {
		c.logger.Warn("transition warning", "path", w.Path, "message", w.Message)
	}

	if err := ctx.Err(); err != nil {
		c.observeOutcome(metric.OutcomeCancelled, change)
		return failure("apply cancelled: %v", err)
	}

	d := diff.ComputeDiff(c.current, proposed)

	proposal := ChangeProposal{Current: c.current, Proposed: proposed, Diff: d}
	for _, fn := range c.pre {
		if err := fn(proposal); err != nil {
			c.observeOutcome(metric.OutcomeCancelled, change)
			c.logger.Info("change cancelled by subscriber", "reason", err)
			return Result{Message: "change cancelled: " + err.Error(), Validation: vr, Diff: d}
		}
	}

	if err := ctx.Err(); err != nil {
		c.observeOutcome(metric.OutcomeCancelled, change)
		return failure("apply cancelled: %v", err)
	}

	if err := c.broker.Reconfigure(ctx, proposed); err != nil {
		c.observeBroker(false)
		c.observeOutcome(metric.OutcomeApplyFailed, change)
		c.logger.Error("broker reconfigure failed", "error", err)
		return Result{Message: "broker reconfigure failed: " + err.Error(), Validation: vr, Diff: d}
	}
	c.observeBroker(true)

	oldVersion := c.currentVersion
	newVersion := &types.ConfigurationVersion{
		Config:    proposed,
		AppliedAt: time.Now().UTC(),
		AppliedBy: c.appliedBy,
		Change:    change,
	}
	if err := c.store.Save(newVersion); err != nil {
		// The broker already runs the proposed configuration; commit it even
		// though the history entry is lost.
		c.current = proposed
		c.logger.Error("failed to persist configuration version", "error", err)
		c.observeOutcome(metric.OutcomeApplyFailed, change)
		return Result{Message: "applied but failed to persist version: " + err.Error(), Validation: vr, Diff: d}
	}

	c.current = proposed
	c.currentVersion = newVersion
	c.observeVersion(newVersion)
	c.observeOutcome(metric.OutcomeApplied, change)
	c.observeDuration(time.Since(start))

	c.logger.Info("configuration applied",
		"version", newVersion.Number,
		"change", string(change),
		"changes", d.Len())

	applied := AppliedChange{OldVersion: oldVersion, NewVersion: newVersion, Diff: d}
	for _, fn := range c.post {
		c.notifyApplied(fn, applied)
	}

	return Result{Success: true, Message: "configuration applied", Validation: vr, Diff: d, Version: newVersion}
}

// notifyApplied shields the committed state from observer panics.
func (c *Controller) notifyApplied(fn AppliedFunc, applied AppliedChange) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("post-change observer panicked", "panic", r)
		}
	}()
	fn(applied)
}

// Info merges the broker's runtime state with the current configuration.
type Info struct {
	Runtime types.RuntimeInfo    `json:"runtime"`
	Config  *types.Configuration `json:"config"`
	Version int                  `json:"version"`
}

// GetInfo queries the broker's runtime-info capability and merges it with the
// current configuration. It is read-only.
func (c *Controller) GetInfo(ctx context.Context) (*Info, error) {
	runtimeInfo, err := c.broker.RuntimeInfo(ctx)
	if err != nil {
		return nil, errors.WrapTransient(err, "Controller", "GetInfo", "query broker runtime info")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return &Info{
		Runtime: *runtimeInfo,
		Config:  c.current.Clone(),
		Version: c.currentVersion.Number,
	}, nil
}

func (c *Controller) observeOutcome(outcome string, change types.ChangeType) {
	if c.metrics == nil {
		return
	}
	c.metrics.AppliesTotal.WithLabelValues(outcome, string(change)).Inc()
}

func (c *Controller) observeFindings(vr *types.ValidationResult) {
	if c.metrics == nil {
		return
	}
	for _, f := range vr.Findings {
		c.metrics.ValidationFindings.WithLabelValues(string(f.Severity)).Inc()
	}
}

func (c *Controller) observeBroker(success bool) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	c.metrics.BrokerReconfigures.WithLabelValues(status).Inc()
}

func (c *Controller) observeVersion(v *types.ConfigurationVersion) {
	if c.metrics == nil {
		return
	}
	c.metrics.CurrentVersion.Set(float64(v.Number))
	c.metrics.VersionsStored.Set(float64(c.store.Count()))
}

func (c *Controller) observeDuration(d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ApplyDuration.Observe(d.Seconds())
}
