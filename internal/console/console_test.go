package console

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/cityline/internal/audit"
	"github.com/linnemanlabs/cityline/internal/audit/memstore"
	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/registry"
	"github.com/linnemanlabs/cityline/internal/session"
)

type fakeUpdater struct {
	calls []string
	err   error
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, id string, status complaint.Status, reason string) (*complaint.Complaint, error) {
	f.calls = append(f.calls, id+":"+string(status)+":"+reason)
	if f.err != nil {
		return nil, f.err
	}
	return &complaint.Complaint{ID: id, Status: status, RejectionReason: reason}, nil
}

type promptFunc func(ctx context.Context) (string, error)

func (f promptFunc) PromptReason(ctx context.Context) (string, error) { return f(ctx) }

func seedComplaints() []complaint.Complaint {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return []complaint.Complaint{
		{ID: "c-1", Category: "pothole", Department: complaint.DeptRoads, Urgency: complaint.UrgencyHigh, Status: complaint.StatusSubmitted, Timestamp: base.Add(3 * time.Hour)},
		{ID: "c-2", Category: "leak", Department: complaint.DeptWater, Urgency: complaint.UrgencyMedium, Status: complaint.StatusInProgress, Timestamp: base.Add(2 * time.Hour)},
		{ID: "c-3", Category: "outage", Department: complaint.DeptElectricity, Urgency: complaint.UrgencyCritical, Status: complaint.StatusSubmitted, Timestamp: base.Add(time.Hour)},
		{ID: "c-4", Category: "pothole", Department: complaint.DeptRoads, Urgency: complaint.UrgencyLow, Status: complaint.StatusResolved, Timestamp: base},
	}
}

// newConsole builds a console over a pre-refreshed registry.
func newConsole(t *testing.T, sess *session.Session, upd Updater) (*Console, *memstore.Store, *int) {
	t.Helper()

	reg := registry.New(registry.ListerFunc(func(context.Context) ([]complaint.Complaint, error) {
		return seedComplaints(), nil
	}))
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}

	store := memstore.New()
	triggers := 0
	c := New(Config{
		Session:  sess,
		Registry: reg,
		Trigger:  func() { triggers++ },
		Updater:  upd,
		Audit:    store,
		Logger:   log.Nop(),
	})
	return c, store, &triggers
}

func adminSession() *session.Session {
	return &session.Session{Subject: "admin-1", Role: session.RoleCityAdmin}
}

func TestView_AdminSeesEverything(t *testing.T) {
	t.Parallel()

	c, _, _ := newConsole(t, adminSession(), &fakeUpdater{})
	view := c.View()
	if len(view) != 4 {
		t.Fatalf("view size = %d, want 4", len(view))
	}
	// Registry orders newest first.
	if view[0].ID != "c-1" || view[3].ID != "c-4" {
		t.Errorf("unexpected order: %s .. %s", view[0].ID, view[3].ID)
	}
}

func TestView_OfficerScopedAndLocked(t *testing.T) {
	t.Parallel()

	sess := &session.Session{Subject: "officer-1", Role: session.RoleOfficer, Department: "roads"}
	c, _, _ := newConsole(t, sess, &fakeUpdater{})

	view := c.View()
	for _, rec := range view {
		if rec.Department != complaint.DeptRoads {
			t.Errorf("officer view leaked department %s", rec.Department)
		}
	}
	if len(view) != 2 {
		t.Fatalf("view size = %d, want 2", len(view))
	}

	if err := c.SetDepartment("water"); err == nil {
		t.Error("expected department facet to be locked for officer")
	}
	if err := c.SetDepartment("roads"); err != nil {
		t.Errorf("re-asserting the locked department should be fine: %v", err)
	}
}

func TestView_FacetsCombine(t *testing.T) {
	t.Parallel()

	c, _, _ := newConsole(t, adminSession(), &fakeUpdater{})
	if err := c.SetDepartment("roads"); err != nil {
		t.Fatalf("SetDepartment: %v", err)
	}
	c.SetStatus("submitted")

	view := c.View()
	if len(view) != 1 || view[0].ID != "c-1" {
		t.Fatalf("view = %v, want just c-1", ids(view))
	}
}

func TestUpdateStatus_Applied(t *testing.T) {
	t.Parallel()

	upd := &fakeUpdater{}
	c, store, triggers := newConsole(t, adminSession(), upd)

	if err := c.UpdateStatus(context.Background(), "c-1", complaint.StatusInProgress, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if len(upd.calls) != 1 {
		t.Fatalf("upstream calls = %d, want 1", len(upd.calls))
	}
	if *triggers != 1 {
		t.Errorf("refresh triggers = %d, want 1", *triggers)
	}

	// No optimistic mutation: the cache still holds the old status.
	rec, _ := c.Lookup("c-1")
	if rec.Status != complaint.StatusSubmitted {
		t.Errorf("cached status = %s, want submitted until refresh", rec.Status)
	}

	entries, _ := store.Recent(context.Background(), 1)
	if len(entries) != 1 {
		t.Fatal("expected one audit entry")
	}
	e := entries[0]
	if e.Outcome != audit.OutcomeApplied || e.ComplaintID != "c-1" || e.Actor != "admin-1" {
		t.Errorf("audit entry = %+v", e)
	}
	if e.FromStatus != complaint.StatusSubmitted || e.ToStatus != complaint.StatusInProgress {
		t.Errorf("audit transition = %s -> %s", e.FromStatus, e.ToStatus)
	}
}

func TestUpdateStatus_InvalidTransitionNeverSent(t *testing.T) {
	t.Parallel()

	upd := &fakeUpdater{}
	c, store, _ := newConsole(t, adminSession(), upd)

	err := c.UpdateStatus(context.Background(), "c-4", complaint.StatusInProgress, "")
	if !errors.Is(err, complaint.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if len(upd.calls) != 0 {
		t.Error("invalid transition must not reach upstream")
	}

	entries, _ := store.Recent(context.Background(), 1)
	if len(entries) != 1 || entries[0].Outcome != audit.OutcomeRejected {
		t.Errorf("expected one rejected audit entry, got %+v", entries)
	}
}

func TestUpdateStatus_RejectRequiresReason(t *testing.T) {
	t.Parallel()

	upd := &fakeUpdater{}
	c, _, _ := newConsole(t, adminSession(), upd)

	err := c.UpdateStatus(context.Background(), "c-1", complaint.StatusRejected, "")
	if !errors.Is(err, complaint.ErrReasonRequired) {
		t.Fatalf("err = %v, want ErrReasonRequired", err)
	}
	if len(upd.calls) != 0 {
		t.Error("reject without reason must not reach upstream")
	}
}

func TestUpdateStatus_PrompterSuppliesReason(t *testing.T) {
	t.Parallel()

	upd := &fakeUpdater{}
	reg := registry.New(registry.ListerFunc(func(context.Context) ([]complaint.Complaint, error) {
		return seedComplaints(), nil
	}))
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	c := New(Config{
		Session:  adminSession(),
		Registry: reg,
		Updater:  upd,
		Audit:    memstore.New(),
		Prompter: promptFunc(func(context.Context) (string, error) { return "duplicate report", nil }),
		Logger:   log.Nop(),
	})

	if err := c.UpdateStatus(context.Background(), "c-1", complaint.StatusRejected, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(upd.calls) != 1 || upd.calls[0] != "c-1:rejected:duplicate report" {
		t.Errorf("upstream calls = %v", upd.calls)
	}
}

func TestUpdateStatus_UpstreamFailureSetsBanner(t *testing.T) {
	t.Parallel()

	upd := &fakeUpdater{err: errors.New("upstream 500")}
	c, store, triggers := newConsole(t, adminSession(), upd)

	err := c.UpdateStatus(context.Background(), "c-1", complaint.StatusInProgress, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if c.LastError() == "" {
		t.Error("expected error banner to be set")
	}
	if *triggers != 0 {
		t.Error("failed update must not trigger a refresh")
	}

	entries, _ := store.Recent(context.Background(), 1)
	if len(entries) != 1 || entries[0].Outcome != audit.OutcomeFailed {
		t.Errorf("expected one failed audit entry, got %+v", entries)
	}

	c.ClearError()
	if c.LastError() != "" {
		t.Error("ClearError should dismiss the banner")
	}
}

func TestUpdateStatus_UnknownComplaint(t *testing.T) {
	t.Parallel()

	c, _, _ := newConsole(t, adminSession(), &fakeUpdater{})
	err := c.UpdateStatus(context.Background(), "nope", complaint.StatusResolved, "")
	if !errors.Is(err, ErrUnknownComplaint) {
		t.Fatalf("err = %v, want ErrUnknownComplaint", err)
	}
}

func TestUpdateStatus_OfficerCannotTouchOtherDepartment(t *testing.T) {
	t.Parallel()

	sess := &session.Session{Subject: "officer-1", Role: session.RoleOfficer, Department: "roads"}
	upd := &fakeUpdater{}
	c, _, _ := newConsole(t, sess, upd)

	// c-2 belongs to water; outside the officer's scope it does not exist.
	err := c.UpdateStatus(context.Background(), "c-2", complaint.StatusResolved, "")
	if !errors.Is(err, ErrUnknownComplaint) {
		t.Fatalf("err = %v, want ErrUnknownComplaint", err)
	}
	if len(upd.calls) != 0 {
		t.Error("out-of-scope update must not reach upstream")
	}
}

func TestRefresh_ErrorKeepsCacheAndSetsBanner(t *testing.T) {
	t.Parallel()

	fail := false
	reg := registry.New(registry.ListerFunc(func(context.Context) ([]complaint.Complaint, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		return seedComplaints(), nil
	}))
	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	var outcomes []string
	c := New(Config{
		Session:  adminSession(),
		Registry: reg,
		Updater:  &fakeUpdater{},
		Audit:    memstore.New(),
		Hooks: Hooks{OnRefresh: func(outcome string, _ time.Duration, _ int) {
			outcomes = append(outcomes, outcome)
		}},
		Logger: log.Nop(),
	})

	fail = true
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if c.LastError() == "" {
		t.Error("expected banner after failed refresh")
	}
	if len(c.View()) != 4 {
		t.Error("failed refresh must keep the stale cache")
	}

	fail = false
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c.LastError() != "" {
		t.Error("successful refresh should clear the banner")
	}

	want := []string{"error", "ok"}
	if len(outcomes) != 2 || outcomes[0] != want[0] || outcomes[1] != want[1] {
		t.Errorf("hook outcomes = %v, want %v", outcomes, want)
	}
}

type fakeCritical struct{ sent []string }

func (f *fakeCritical) Send(_ context.Context, c *complaint.Complaint) error {
	f.sent = append(f.sent, c.ID)
	return nil
}

func TestRefresh_NotifiesNewCriticalsOnce(t *testing.T) {
	t.Parallel()

	crit := &fakeCritical{}
	reg := registry.New(registry.ListerFunc(func(context.Context) ([]complaint.Complaint, error) {
		return seedComplaints(), nil
	}))
	c := New(Config{
		Session:  adminSession(),
		Registry: reg,
		Updater:  &fakeUpdater{},
		Audit:    memstore.New(),
		Critical: crit,
		Logger:   log.Nop(),
	})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(crit.sent) != 1 || crit.sent[0] != "c-3" {
		t.Errorf("critical notifications = %v, want exactly [c-3]", crit.sent)
	}
}

func ids(in []complaint.Complaint) []string {
	out := make([]string, len(in))
	for i := range in {
		out[i] = in[i].ID
	}
	return out
}
