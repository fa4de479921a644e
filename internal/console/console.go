// Package console holds the operator-facing view state: the synchronized
// complaint registry, the active facet selection, the visible error banner,
// and the lifecycle command processor.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/cityline/internal/audit"
	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/facet"
	"github.com/linnemanlabs/cityline/internal/registry"
	"github.com/linnemanlabs/cityline/internal/scope"
	"github.com/linnemanlabs/cityline/internal/session"
	"github.com/linnemanlabs/cityline/internal/stats"
)

// ErrUnknownComplaint is returned when a lifecycle command names a record
// that is not in the synchronized cache.
var ErrUnknownComplaint = errors.New("unknown complaint")

// Updater applies a status change upstream. Satisfied by cityapi.Client.
type Updater interface {
	UpdateStatus(ctx context.Context, id string, status complaint.Status, reason string) (*complaint.Complaint, error)
}

// ReasonPrompter collects a rejection reason from the operator when a
// reject command arrives without one.
type ReasonPrompter interface {
	PromptReason(ctx context.Context) (string, error)
}

// CriticalNotifier is told about newly seen critical complaints.
// Satisfied by slack.Notifier.
type CriticalNotifier interface {
	Send(ctx context.Context, c *complaint.Complaint) error
}

// Hooks are optional callbacks for instrumentation. Nil fields are skipped.
type Hooks struct {
	OnRefresh func(outcome string, dur time.Duration, size int)
	OnCommand func(result string)
}

// Config carries the console's collaborators.
type Config struct {
	Session  *session.Session
	Registry *registry.Registry
	Trigger  func() // coalesced refresh request, normally Syncer.Trigger
	Updater  Updater
	Audit    audit.Store
	Prompter ReasonPrompter   // optional
	Critical CriticalNotifier // optional
	Hooks    Hooks
	Logger   log.Logger
}

// Console is the single view of one operator session.
type Console struct {
	sess    *session.Session
	sc      scope.Scope
	reg     *registry.Registry
	trigger func()
	updater Updater
	audit   audit.Store
	prompt  ReasonPrompter
	crit    CriticalNotifier
	hooks   Hooks
	logger  log.Logger

	mu        sync.Mutex
	selection facet.Selection
	lastErr   string
	notified  map[string]bool
}

// New builds a console for the given session. The facet selection starts
// with the department pinned for officers and everything else unfiltered.
func New(cfg Config) *Console {
	sc := scope.Resolve(cfg.Session)
	c := &Console{
		sess:      cfg.Session,
		sc:        sc,
		reg:       cfg.Registry,
		trigger:   cfg.Trigger,
		updater:   cfg.Updater,
		audit:     cfg.Audit,
		prompt:    cfg.Prompter,
		crit:      cfg.Critical,
		hooks:     cfg.Hooks,
		logger:    cfg.Logger,
		selection: facet.New(sc),
		notified:  make(map[string]bool),
	}
	if c.trigger == nil {
		c.trigger = func() {}
	}
	return c
}

// Scope returns the access scope resolved from the session.
func (c *Console) Scope() scope.Scope { return c.sc }

// Session returns the operator session the console was built for.
func (c *Console) Session() *session.Session { return c.sess }

// Refresh re-fetches the registry and reports the outcome. A stale result
// is not an error for the view: a newer refresh already supplied the cache.
func (c *Console) Refresh(ctx context.Context) error {
	start := time.Now()
	err := c.reg.Refresh(ctx)
	dur := time.Since(start)
	size := len(c.reg.Snapshot())

	switch {
	case err == nil:
		c.emitRefresh("ok", dur, size)
		c.setError("")
		c.notifyCriticals(ctx)
		return nil
	case errors.Is(err, registry.ErrStaleRefresh):
		c.emitRefresh("stale", dur, size)
		return nil
	default:
		c.emitRefresh("error", dur, size)
		c.setError(fmt.Sprintf("refresh failed: %v", err))
		c.logger.Error(ctx, err, "refresh failed", "cached", size)
		return err
	}
}

func (c *Console) emitRefresh(outcome string, dur time.Duration, size int) {
	if c.hooks.OnRefresh != nil {
		c.hooks.OnRefresh(outcome, dur, size)
	}
}

// notifyCriticals sends one notification per newly seen non-terminal
// critical complaint. Send failures are logged, never surfaced.
func (c *Console) notifyCriticals(ctx context.Context) {
	if c.crit == nil {
		return
	}
	for _, rec := range c.View() {
		if rec.Urgency != complaint.UrgencyCritical || rec.Status.Terminal() {
			continue
		}
		c.mu.Lock()
		seen := c.notified[rec.ID]
		c.notified[rec.ID] = true
		c.mu.Unlock()
		if seen {
			continue
		}
		if err := c.crit.Send(ctx, &rec); err != nil {
			c.logger.Warn(ctx, "critical notification failed", "complaint_id", rec.ID, "error", err.Error())
		}
	}
}

// View returns the cached records visible under the session scope and the
// current facet selection, preserving registry order.
func (c *Console) View() []complaint.Complaint {
	c.mu.Lock()
	sel := c.selection
	c.mu.Unlock()
	return sel.Apply(c.sc, c.reg.Snapshot())
}

// ViewWith returns the visible records under an alternative facet
// selection, leaving the stored selection untouched.
func (c *Console) ViewWith(sel facet.Selection) []complaint.Complaint {
	return sel.Apply(c.sc, c.reg.Snapshot())
}

// Lookup returns a scoped record from the cache by id.
func (c *Console) Lookup(id string) (*complaint.Complaint, bool) {
	rec, ok := c.reg.Lookup(id)
	if !ok || !c.sc.Allows(rec) {
		return nil, false
	}
	return rec, true
}

// Selection returns a copy of the active facet selection.
func (c *Console) Selection() facet.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// SetDepartment updates the department facet within the session scope.
func (c *Console) SetDepartment(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.SetDepartment(c.sc, value)
}

// SetUrgency updates the urgency facet.
func (c *Console) SetUrgency(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.SetUrgency(value)
}

// SetStatus updates the status facet.
func (c *Console) SetStatus(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.SetStatus(value)
}

// StatsView is the dashboard payload computed over the visible records.
type StatsView struct {
	Summary      stats.Summary         `json:"summary"`
	ByCategory   []stats.Bucket        `json:"by_category"`
	ByDepartment []stats.Bucket        `json:"by_department"`
	Priority     []complaint.Complaint `json:"priority"`
	LastSync     time.Time             `json:"last_sync"`
}

// Stats aggregates the visible records.
func (c *Console) Stats() StatsView {
	view := c.View()
	return StatsView{
		Summary:      stats.Compute(view),
		ByCategory:   stats.ByCategory(view),
		ByDepartment: stats.ByDepartment(view),
		Priority:     stats.PriorityQueue(view, 5),
		LastSync:     c.reg.LastSync(),
	}
}

// UpdateStatus runs one lifecycle command: validate against the cached
// record first, send upstream only when the transition is legal, and never
// mutate the cache directly; a successful confirmation triggers a refresh.
// Every outcome lands in the audit trail.
func (c *Console) UpdateStatus(ctx context.Context, id string, to complaint.Status, reason string) error {
	rec, ok := c.Lookup(id)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownComplaint, id)
		c.appendAudit(ctx, &complaint.Complaint{ID: id}, to, reason, audit.OutcomeRejected, err)
		c.emitCommand(string(audit.OutcomeRejected))
		return err
	}

	if to == complaint.StatusRejected && reason == "" && c.prompt != nil {
		r, err := c.prompt.PromptReason(ctx)
		if err != nil {
			return fmt.Errorf("collect rejection reason: %w", err)
		}
		reason = r
	}

	if err := complaint.ValidateTransition(rec.Status, to, reason); err != nil {
		c.appendAudit(ctx, rec, to, reason, audit.OutcomeRejected, err)
		c.emitCommand(string(audit.OutcomeRejected))
		return err
	}

	if _, err := c.updater.UpdateStatus(ctx, id, to, reason); err != nil {
		c.appendAudit(ctx, rec, to, reason, audit.OutcomeFailed, err)
		c.emitCommand(string(audit.OutcomeFailed))
		c.setError(fmt.Sprintf("update %s failed: %v", id, err))
		c.logger.Error(ctx, err, "status update failed",
			"complaint_id", id, "to", string(to))
		return fmt.Errorf("update status: %w", err)
	}

	c.appendAudit(ctx, rec, to, reason, audit.OutcomeApplied, nil)
	c.emitCommand(string(audit.OutcomeApplied))
	c.setError("")
	c.logger.Info(ctx, "status update applied",
		"complaint_id", id, "from", string(rec.Status), "to", string(to))
	c.trigger()
	return nil
}

func (c *Console) appendAudit(ctx context.Context, rec *complaint.Complaint, to complaint.Status, reason string, outcome audit.Outcome, cause error) {
	e := &audit.Entry{
		ID:          ulid.Make().String(),
		ComplaintID: rec.ID,
		Actor:       c.sess.Subject,
		FromStatus:  rec.Status,
		ToStatus:    to,
		Reason:      reason,
		Outcome:     outcome,
		At:          time.Now().UTC(),
	}
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := c.audit.Append(ctx, e); err != nil {
		c.logger.Warn(ctx, "audit append failed", "complaint_id", rec.ID, "error", err.Error())
	}
}

func (c *Console) emitCommand(result string) {
	if c.hooks.OnCommand != nil {
		c.hooks.OnCommand(result)
	}
}

// LastError returns the visible error banner, empty when clear.
func (c *Console) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError dismisses the error banner.
func (c *Console) ClearError() { c.setError("") }

func (c *Console) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}
