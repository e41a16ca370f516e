// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ledgerline/console/api"
	"github.com/ledgerline/console/environment"
	"github.com/ledgerline/console/lib/clock"
)

// State is the lifecycle controller's position in the session state
// machine.
type State int

const (
	// NoSession means no credentials exist: fresh boot, or a durable
	// record that failed restore.
	NoSession State = iota
	// Restoring means the durable record is being read and checked.
	Restoring
	// Active means a valid session is installed and the expiry timer
	// is armed.
	Active
	// Expiring means the expiry timer has fired and logout is in
	// progress.
	Expiring
	// LoggedOut means a session existed this process lifetime and was
	// ended — by the operator, by expiry, or by a 401.
	LoggedOut
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Restoring:
		return "restoring"
	case Active:
		return "active"
	case Expiring:
		return "expiring"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// EventKind classifies controller notifications.
type EventKind string

const (
	// EventRestored fires when a durable session survives the boot
	// checks and becomes Active.
	EventRestored EventKind = "restored"
	// EventLoggedIn fires when a login or registration succeeds.
	EventLoggedIn EventKind = "logged_in"
	// EventLoggedOut fires when the session ends for any reason.
	EventLoggedOut EventKind = "logged_out"
)

// Event is a lifecycle notification. Reason is set on logout events
// ("logout", "expired", "unauthorized", "corrupt").
type Event struct {
	Kind   EventKind
	Reason string
}

// Controller owns every session transition. It is the single writer
// of the session store, the only code that arms the expiry timer, and
// — at login resolution — the one path allowed to set the environment
// selector from server data.
type Controller struct {
	mu          sync.Mutex
	clock       clock.Clock
	store       *Store
	env         *environment.Store
	logger      *slog.Logger
	state       State
	timer       *clock.Timer
	subscribers []chan Event
}

// NewController wires the controller to its collaborators. Call
// Restore once at boot.
func NewController(store *Store, env *environment.Store, clk clock.Clock, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		clock:  clk,
		store:  store,
		env:    env,
		logger: logger,
		state:  NoSession,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the active record, or nil.
func (c *Controller) Session() *Record {
	return c.store.Current()
}

// Subscribe returns a channel receiving lifecycle events. Buffered;
// subscribers that fall behind miss intermediate events and should
// re-read State.
func (c *Controller) Subscribe() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	channel := make(chan Event, 8)
	c.subscribers = append(c.subscribers, channel)
	return channel
}

// AuthContext assembles the per-request identity signals for the
// active session: the bearer token, the environment id re-resolved
// against the current selector, and the raw selector literal. ok is
// false when no session is active.
func (c *Controller) AuthContext() (auth api.AuthContext, ok bool) {
	record := c.store.Current()
	if record == nil {
		return api.AuthContext{}, false
	}
	env := c.env.Get()
	return api.AuthContext{
		AccessToken:   record.AccessToken,
		EnvironmentID: record.ResolveEnvironmentID(env),
		Environment:   string(env),
	}, true
}

// Restore reads the durable session record and installs it if it
// passes the boot checks: parseable, structurally valid (non-empty
// environment id), and not expired. Anything else discards the record
// and leaves the controller in NoSession — the operator logs in
// again; no network call is made either way.
func (c *Controller) Restore() State {
	c.mu.Lock()
	c.state = Restoring
	c.mu.Unlock()

	record := c.store.loadDurable()
	if record == nil {
		return c.finishRestore(nil, "")
	}
	if err := record.Validate(); err != nil {
		c.logger.Warn("discarding invalid session record", "error", err)
		c.store.discardDurable()
		return c.finishRestore(nil, "")
	}

	now := c.clock.Now()
	if record.Expired(now) {
		c.logger.Info("durable session expired", "expired_at", record.ExpiresAt())
		c.store.discardDurable()
		return c.finishRestore(nil, "")
	}

	return c.finishRestore(record, record.ResolveEnvironmentID(c.env.Get()))
}

func (c *Controller) finishRestore(record *Record, resolvedID string) State {
	if record == nil {
		c.mu.Lock()
		c.state = NoSession
		c.mu.Unlock()
		return NoSession
	}

	c.store.install(record)

	c.mu.Lock()
	c.state = Active
	c.armTimerLocked(record.ExpiresAt())
	subscribers := c.subscribers
	c.mu.Unlock()

	c.logger.Info("session restored",
		"expires_at", record.ExpiresAt(),
		"environment_id", resolvedID,
	)
	dispatch(subscribers, Event{Kind: EventRestored})
	return Active
}

// HandleAuthSuccess turns a login or registration payload into an
// active session. The environment id must resolve through the
// four-field fallback chain; a payload without one aborts the login
// with no session created. The matching environment record's type is
// pushed into the environment selector — the only code path where
// server data writes the selector.
func (c *Controller) HandleAuthSuccess(auth *api.AuthResponse) error {
	environmentID, err := ExtractEnvironmentID(auth)
	if err != nil {
		return err
	}

	record := &Record{
		AccessToken:   auth.AccessToken,
		RefreshToken:  auth.RefreshToken,
		ExpiresIn:     auth.ExpiresIn,
		Timestamp:     c.clock.Now().UnixMilli(),
		EnvironmentID: environmentID,
		Environments:  auth.Environments,
	}

	c.env.Set(record.EnvironmentTypeForID(environmentID))
	c.store.replace(record)

	c.mu.Lock()
	c.state = Active
	c.armTimerLocked(record.ExpiresAt())
	subscribers := c.subscribers
	c.mu.Unlock()

	c.logger.Info("logged in",
		"environment_id", environmentID,
		"expires_at", record.ExpiresAt(),
	)
	dispatch(subscribers, Event{Kind: EventLoggedIn})
	return nil
}

// Logout ends the session by operator action.
func (c *Controller) Logout() {
	c.endSession("logout")
}

// ForceLogout ends the session in response to a fatal-session
// condition: a 401 from any call, or a corrupted session detected
// downstream. Safe to call when no session is active (a second 401
// from an in-flight request must not double-fire).
func (c *Controller) ForceLogout(reason string) {
	c.endSession(reason)
}

// expire is the expiry timer callback.
func (c *Controller) expire() {
	c.mu.Lock()
	if c.state != Active {
		c.mu.Unlock()
		return
	}
	c.state = Expiring
	c.mu.Unlock()

	c.logger.Info("session expired")
	c.endSession("expired")
}

// endSession is the single logout path: clear the session from memory
// and durable storage, reset the environment selector to sandbox (a
// stale production selection must never greet the next operator on a
// shared machine), cancel the expiry timer, and notify subscribers
// exactly once.
func (c *Controller) endSession(reason string) {
	c.mu.Lock()
	if c.state != Active && c.state != Expiring {
		c.mu.Unlock()
		return
	}
	c.state = LoggedOut
	c.cancelTimerLocked()
	subscribers := c.subscribers
	c.mu.Unlock()

	c.store.clear()
	c.env.Reset()

	c.logger.Info("session ended", "reason", reason)
	dispatch(subscribers, Event{Kind: EventLoggedOut, Reason: reason})
}

// armTimerLocked schedules the expiry callback, replacing any armed
// timer. Exactly one timer exists at a time. Must hold c.mu.
func (c *Controller) armTimerLocked(expiresAt time.Time) {
	c.cancelTimerLocked()
	until := expiresAt.Sub(c.clock.Now())
	timer := c.clock.AfterFunc(until, c.expire)
	c.timer = timer
}

// cancelTimerLocked stops any pending expiry timer. Must hold c.mu.
func (c *Controller) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// dispatch sends an event to each subscriber without blocking.
func dispatch(subscribers []chan Event, event Event) {
	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
}
