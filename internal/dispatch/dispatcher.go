// Package dispatch executes accepted verdicts against the platform and feeds
// confirmed outcomes back into the quota budget and the dedup cache.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"tweetgate/internal/metrics"
	"tweetgate/internal/model"
	"tweetgate/internal/store"
)

// Executor performs the external action for a verdict. The returned detail
// (e.g. the id of the created status) is journaled on success.
type Executor interface {
	Execute(ctx context.Context, v model.Verdict) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, v model.Verdict) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, v model.Verdict) (string, error) { return f(ctx, v) }

// Quota is the admission and accounting side of the budget.
type Quota interface {
	RemainingForAccount(handle string) bool
	RemainingGlobal() bool
	RecordAction(handle string)
}

// Recorder stores fingerprints of content that was acted on. Reserve holds
// fingerprints while an action is in flight; Record or Release settles them.
type Recorder interface {
	Reserve(fps []string) bool
	Record(itemID string, fps []string)
	Release(fps []string)
}

// ErrNoExecutor is the failure reported when a dispatcher has no executor.
var ErrNoExecutor = errors.New("dispatch: no executor configured")

var noExecutor = ExecutorFunc(func(context.Context, model.Verdict) (string, error) {
	return "", ErrNoExecutor
})

// Journal persists dispatch outcomes.
type Journal interface {
	PutAction(ctx context.Context, a store.Action) error
}

type Status int

const (
	StatusRejected Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "rejected"
	}
}

// Result is the outcome of one dispatch.
type Result struct {
	TaskID  string
	Verdict model.Verdict
	Status  Status
	// Reason is set for rejected dispatches.
	Reason model.RejectReason
	Detail string
	Err    error
}

// Task is a handle on an in-flight dispatch.
type Task struct {
	ID     string
	done   chan struct{}
	result Result
}

func newTask(id string) *Task { return &Task{ID: id, done: make(chan struct{})} }

func (t *Task) finish(r Result) {
	r.TaskID = t.ID
	t.result = r
	close(t.done)
}

// Resolved returns a task that already completed with r, for verdicts that
// are settled without a dispatch (dry runs, early rejections).
func Resolved(r Result) *Task {
	t := newTask(uuid.NewString())
	t.finish(r)
	return t
}

// Done is closed once the result is available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result blocks until the dispatch completed.
func (t *Task) Result() Result {
	<-t.done
	return t.result
}

// Wait is Result with cancellation.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type Options struct {
	Executor Executor
	Quota    Quota
	Dedup    Recorder
	// Journal is optional.
	Journal Journal
	Clock   clockwork.Clock
	Logger  *slog.Logger
}

// Dispatcher runs each accepted verdict on its own goroutine. State is only
// updated after the executor confirmed the action.
type Dispatcher struct {
	exec    Executor
	quota   Quota
	dedup   Recorder
	journal Journal
	clock   clockwork.Clock
	log     *slog.Logger

	wg sync.WaitGroup
}

func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		exec:    opts.Executor,
		quota:   opts.Quota,
		dedup:   opts.Dedup,
		journal: opts.Journal,
		clock:   opts.Clock,
		log:     opts.Logger,
	}
	if d.exec == nil {
		d.exec = noExecutor
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

// Dispatch admits v and starts executing it without waiting for the result.
// Rejected verdicts, verdicts that fail the quota re-check and verdicts whose
// fingerprints are already held by another dispatch complete immediately
// with StatusRejected.
func (d *Dispatcher) Dispatch(ctx context.Context, v model.Verdict) *Task {
	t := newTask(uuid.NewString())
	if !v.Accepted() {
		t.finish(Result{Verdict: v, Status: StatusRejected, Reason: v.Reason})
		return t
	}
	if v.Kind.Counted() && d.quota != nil && (!d.quota.RemainingGlobal() || !d.quota.RemainingForAccount(v.Target)) {
		metrics.IncDispatch(v.Kind.String(), StatusRejected.String())
		d.log.Info("dispatch rejected", "task", t.ID, "kind", v.Kind.String(), "target", v.Target, "reason", string(model.ReasonQuota))
		t.finish(Result{Verdict: v, Status: StatusRejected, Reason: model.ReasonQuota})
		return t
	}
	if d.dedup != nil && !d.dedup.Reserve(v.Fingerprints) {
		metrics.IncDispatch(v.Kind.String(), StatusRejected.String())
		d.log.Info("dispatch rejected", "task", t.ID, "kind", v.Kind.String(), "target", v.Target, "reason", string(model.ReasonDuplicate))
		t.finish(Result{Verdict: v, Status: StatusRejected, Reason: model.ReasonDuplicate})
		return t
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		t.finish(d.run(ctx, t.ID, v))
	}()
	return t
}

func (d *Dispatcher) run(ctx context.Context, id string, v model.Verdict) Result {
	detail, err := d.exec.Execute(ctx, v)
	res := Result{Verdict: v, Detail: detail, Err: err}
	if err != nil {
		res.Status = StatusFailure
		if d.dedup != nil {
			d.dedup.Release(v.Fingerprints)
		}
		d.log.Warn("dispatch failed", "task", id, "kind", v.Kind.String(), "target", v.Target, "tweet", tweetID(v), "err", err)
	} else {
		res.Status = StatusSuccess
		if v.Kind.Counted() && d.quota != nil {
			d.quota.RecordAction(v.Target)
		}
		if d.dedup != nil {
			owner := tweetID(v)
			if owner == "" {
				owner = v.Target
			}
			d.dedup.Record(owner, v.Fingerprints)
		}
		d.log.Info("dispatched", "task", id, "kind", v.Kind.String(), "target", v.Target, "tweet", tweetID(v), "detail", detail)
	}
	metrics.IncDispatch(v.Kind.String(), res.Status.String())
	d.record(ctx, id, res)
	return res
}

func (d *Dispatcher) record(ctx context.Context, id string, res Result) {
	if d.journal == nil {
		return
	}
	a := store.Action{
		TaskID:  id,
		TS:      d.clock.Now().UTC(),
		Kind:    res.Verdict.Kind.String(),
		Handle:  res.Verdict.Target,
		TweetID: tweetID(res.Verdict),
		OK:      res.Status == StatusSuccess,
		Detail:  res.Detail,
	}
	if res.Err != nil {
		a.Detail = res.Err.Error()
	}
	// journal writes outlive the caller's context
	if err := d.journal.PutAction(context.WithoutCancel(ctx), a); err != nil {
		d.log.Error("journal write failed", "task", id, "err", err)
	}
}

// Wait blocks until every started dispatch finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func tweetID(v model.Verdict) string {
	if v.Item == nil {
		return ""
	}
	return v.Item.Raw.ID
}
