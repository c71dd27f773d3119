// Package fetch tracks the loading state of one remote resource. Each
// request is issued a Ticket; only the holder of the newest ticket may
// record an outcome, so late responses from superseded requests are dropped.
package fetch

import "context"

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Ticket identifies one in-flight request.
type Ticket struct {
	Generation uint64 `json:"generation"`
}

// Tracker is the loading/error state of one resource. The zero value is idle.
type Tracker struct {
	Status     Status `json:"status,omitempty"`
	Error      string `json:"error,omitempty"`
	Generation uint64 `json:"generation"`
}

// State returns the status, treating the zero value as idle.
func (t *Tracker) State() Status {
	if t.Status == "" {
		return StatusIdle
	}
	return t.Status
}

// Begin starts a new request and invalidates earlier tickets.
func (t *Tracker) Begin() Ticket {
	t.Generation++
	t.Status = StatusLoading
	t.Error = ""
	return Ticket{Generation: t.Generation}
}

// Current reports whether tk belongs to the latest request.
func (t *Tracker) Current(tk Ticket) bool {
	return tk.Generation == t.Generation && t.Status == StatusLoading
}

// Succeed records success. It returns false for a stale ticket.
func (t *Tracker) Succeed(tk Ticket) bool {
	if !t.Current(tk) {
		return false
	}
	t.Status = StatusReady
	t.Error = ""
	return true
}

// Fail records a failure message. It returns false for a stale ticket.
func (t *Tracker) Fail(tk Ticket, msg string) bool {
	if !t.Current(tk) {
		return false
	}
	t.Status = StatusFailed
	t.Error = msg
	return true
}

// Reset returns to idle and invalidates outstanding tickets.
func (t *Tracker) Reset() {
	t.Generation++
	t.Status = StatusIdle
	t.Error = ""
}

// Loading reports whether a request is in flight.
func (t *Tracker) Loading() bool { return t.State() == StatusLoading }

// Failed reports whether the last request failed.
func (t *Tracker) Failed() bool { return t.State() == StatusFailed }

// Ready reports whether the last request succeeded.
func (t *Tracker) Ready() bool { return t.State() == StatusReady }

// Live reports whether a result obtained under ctx may still be applied.
// A cancelled request (client gone, deadline hit) must not update state.
func Live(ctx context.Context) bool {
	return ctx.Err() == nil
}
