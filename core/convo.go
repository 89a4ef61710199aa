/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"log"
	"sync"
	"time"
)

// DefaultTimeout is the receive timeout used when neither the
// operation nor the Conversation gives one.
var DefaultTimeout = 60 * time.Second

// WriteFunc sends one outbound token to the partner.
//
// Called synchronously from Send; an error returns to Send's caller.
type WriteFunc func(token string) error

// Done is a completion callback: exactly one of err and data is
// meaningful.
type Done func(err error, data interface{})

// Receiver handles one inbound token during a receive operation.
//
// The returned value decides what happens next:
//
//	Repeat             stay installed for the next token
//	a Receiver         that Receiver takes over
//	anything else      the operation completes with that value
//
// A returned error completes the operation with that error.  See
// Expect for compiling declarative patterns into Receivers.
type Receiver func(token string) (interface{}, error)

// Conversation carries on a token-at-a-time dialogue with one
// partner.
//
// Create one with NewConversation.  A Conversation is either idle or
// busy with exactly one operation (a receive or a wait); see Busy.
type Conversation struct {
	// Timeout is the default receive timeout.  Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Timers schedules the receive-timeout and wait timers.  Nil
	// means Wallclock.
	Timers Scheduler

	// Acc is a scratch slot for per-operation state.  Receivers
	// and registered handlers may read and write it freely; the
	// engine sets it to nil whenever an operation terminates, for
	// any reason.
	Acc interface{}

	// Verbose turns on Logf output.
	Verbose bool

	write WriteFunc

	mu        sync.Mutex
	onData    Receiver
	onDone    Done
	toTimer   Timer
	toTime    time.Duration
	waitTimer Timer
	registry  []*registration
	unhandled Done
}

// NewConversation makes a Conversation that writes outbound tokens
// with the given function.
func NewConversation(write WriteFunc) *Conversation {
	return &Conversation{
		write: write,
	}
}

// Logf logs when the Conversation is Verbose.
func (c *Conversation) Logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf(format, args...)
	}
}

func (c *Conversation) sched() Scheduler {
	if c.Timers == nil {
		return Wallclock
	}
	return c.Timers
}

// busy must be called with c.mu held.
func (c *Conversation) busy() bool {
	return c.onData != nil || c.waitTimer != nil
}

// Busy reports whether an operation is in flight.
//
// Note that user code invoked by the engine (a Receiver, a completion
// callback) observes an idle Conversation and so may start the next
// operation synchronously.
func (c *Conversation) Busy() bool {
	c.mu.Lock()
	b := c.busy()
	c.mu.Unlock()
	return b
}

// OnUnhandled installs the sink for tokens and errors that have
// nowhere else to go.  With no sink, stray tokens are dropped and
// stray errors are logged.
func (c *Conversation) OnUnhandled(f Done) {
	c.mu.Lock()
	c.unhandled = f
	c.mu.Unlock()
}

func (c *Conversation) toUnhandled(err error, data interface{}) {
	c.mu.Lock()
	f := c.unhandled
	c.mu.Unlock()
	if f == nil {
		if err != nil {
			log.Printf("conversation unhandled error %s", err)
		}
		return
	}
	if perr := safely(func() { f(err, data) }); perr != nil {
		log.Printf("conversation unhandled-sink panic %s", perr)
	}
}

// reject delivers an operation-level refusal: to the operation's own
// callback if there is one, otherwise to the unhandled sink.
func (c *Conversation) reject(err error, onDone Done) {
	if onDone != nil {
		onDone(err, nil)
		return
	}
	c.toUnhandled(err, nil)
}

// Send writes a token to the partner unless an operation is in
// flight, in which case it silently does nothing.  Use ForceSend to
// bypass the gate.
func (c *Conversation) Send(token string) error {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		c.Logf("send suppressed (busy): %q", token)
		return nil
	}
	w := c.write
	c.mu.Unlock()
	c.Logf("send %q", token)
	return w(token)
}

// ForceSend writes a token to the partner regardless of the busy
// state.
func (c *Conversation) ForceSend(token string) error {
	c.Logf("send! %q", token)
	return c.write(token)
}

// Receive transitions the Conversation from idle to receiving.
//
// onData handles each inbound token (nil: accept a single token
// verbatim).  timeout bounds the whole operation (0: the
// Conversation's default); expiry delivers ErrTimeout.  onDone, if
// given, becomes the operation's completion callback; if nil, a
// callback installed by an enclosing operation (see the Receiver doc
// on chaining) stays in place.
//
// If the Conversation is busy, ErrBusy goes to onDone (or to the
// unhandled sink).
//
// Returns the Conversation, which is what makes receives usable as
// sequencer steps.
func (c *Conversation) Receive(timeout time.Duration, onData Receiver, onDone Done) *Conversation {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		c.reject(ErrBusy, onDone)
		return c
	}
	if onData == nil {
		onData = func(token string) (interface{}, error) {
			return token, nil
		}
	}
	if timeout <= 0 {
		if timeout = c.Timeout; timeout <= 0 {
			timeout = DefaultTimeout
		}
	}
	c.onData = onData
	if onDone != nil {
		c.onDone = onDone
	}
	c.armTimeout(timeout)
	c.mu.Unlock()
	return c
}

// Cmd sends a token and then receives the response: the send-gate
// check, the write, and the Receive semantics compose exactly as the
// pieces do.  A write error goes to onDone (or the unhandled sink).
func (c *Conversation) Cmd(token string, timeout time.Duration, onData Receiver, onDone Done) *Conversation {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		c.reject(ErrBusy, onDone)
		return c
	}
	c.mu.Unlock()
	c.Logf("cmd %q", token)
	if err := c.write(token); err != nil {
		c.reject(err, onDone)
		return c
	}
	return c.Receive(timeout, onData, onDone)
}

// Wait transitions the Conversation from idle to waiting: busy for d,
// dropping inbound tokens, then completing with the WaitStop
// sentinel.  Stop ends a Wait early.
func (c *Conversation) Wait(d time.Duration, onDone Done) *Conversation {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		c.reject(ErrBusy, onDone)
		return c
	}
	if onDone != nil {
		c.onDone = onDone
	}
	var h Timer
	h = c.sched().Schedule(d, func() {
		c.mu.Lock()
		if c.waitTimer != h {
			c.mu.Unlock()
			return
		}
		c.finish(nil, WaitStop)
	})
	c.waitTimer = h
	c.mu.Unlock()
	return c
}

// Stop terminates the operation in flight, delivering (err, data) to
// its completion callback.  Stopping an idle Conversation routes
// ErrNotBusy to the unhandled sink.
func (c *Conversation) Stop(err error, data interface{}) {
	c.mu.Lock()
	if !c.busy() {
		c.mu.Unlock()
		c.toUnhandled(ErrNotBusy, nil)
		return
	}
	c.finish(err, data)
}

// ResetTimeout cancels and re-arms the receive timeout.  Zero reuses
// the previous value.  Does nothing when no receive is in flight.
func (c *Conversation) ResetTimeout(timeout time.Duration) {
	c.mu.Lock()
	if c.onData == nil && c.toTimer == nil {
		c.mu.Unlock()
		return
	}
	if timeout <= 0 {
		timeout = c.toTime
	}
	c.armTimeout(timeout)
	c.mu.Unlock()
}

// armTimeout must be called with c.mu held.
func (c *Conversation) armTimeout(d time.Duration) {
	if c.toTimer != nil {
		c.toTimer.Cancel()
	}
	c.toTime = d
	var h Timer
	h = c.sched().Schedule(d, func() {
		c.mu.Lock()
		if c.toTimer != h {
			// A cancelled (or superseded) handle never acts.
			c.mu.Unlock()
			return
		}
		c.finish(ErrTimeout, nil)
	})
	c.toTimer = h
}

// finish is the terminal transition.  Must be called with c.mu held;
// returns with c.mu released.
//
// The order matters: the accumulator is cleared, the timers are
// cancelled, and the callback slot is emptied -- establishing idle --
// before the snapshotted callback runs, so the callback can start the
// next operation.
func (c *Conversation) finish(err error, data interface{}) {
	c.Acc = nil
	if c.toTimer != nil {
		c.toTimer.Cancel()
		c.toTimer = nil
	}
	if c.waitTimer != nil {
		c.waitTimer.Cancel()
		c.waitTimer = nil
	}
	c.onData = nil
	done := c.onDone
	c.onDone = nil
	c.mu.Unlock()

	if done == nil {
		// A wait's natural expiry isn't anybody's problem; an
		// actual error is.
		if err != nil {
			c.toUnhandled(err, nil)
		}
		return
	}
	if perr := safely(func() { done(err, data) }); perr != nil {
		c.toUnhandled(perr, nil)
	}
}

// Feed dispatches one inbound token.
//
// Dispatch order: registered handlers (newest first), then the busy
// phase (a wait swallows the token; a receive hands it to the
// installed Receiver), then the unhandled sink.
func (c *Conversation) Feed(token string) {
	c.Logf("feed %q", token)

	if c.dispatchRegistry(token) {
		return
	}

	c.mu.Lock()

	if c.waitTimer != nil {
		// Waiting: drop silently.
		c.mu.Unlock()
		return
	}

	if c.onData == nil {
		// Idle: the token has nowhere to go.
		c.mu.Unlock()
		c.toUnhandled(nil, token)
		return
	}

	// Receiving.  Detach the Receiver before invoking it so that
	// the Conversation is observably idle: the Receiver may start
	// the next operation synchronously.
	h := c.onData
	c.onData = nil
	c.mu.Unlock()

	var (
		v   interface{}
		err error
	)
	if perr := safely(func() { v, err = h(token) }); perr != nil {
		err = perr
	}

	c.mu.Lock()
	switch {
	case err != nil:
		c.finish(err, nil)
	case v == Repeat:
		if c.onData == nil {
			c.onData = h
		}
		c.mu.Unlock()
	default:
		if r, is := receiver(v); is {
			c.onData = r
			c.mu.Unlock()
			break
		}
		if c.busy() {
			// The Receiver already started a new
			// operation; the returned value isn't a
			// completion for it.
			c.mu.Unlock()
			break
		}
		c.finish(nil, v)
	}
}

// receiver recognizes the callable shapes a Receiver may return to
// hand off to a new handler.
func receiver(v interface{}) (Receiver, bool) {
	switch vv := v.(type) {
	case Receiver:
		return vv, true
	case func(string) (interface{}, error):
		return vv, true
	}
	return nil, false
}

// wrapOnDone chains a continuation behind any callback the user
// already supplied for the operation in flight: the user's callback
// runs first, and a panic there becomes the continuation's error.
func (c *Conversation) wrapOnDone(k Done) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.busy() {
		return ErrNotBusy
	}
	user := c.onDone
	if user == nil {
		c.onDone = k
		return nil
	}
	c.onDone = func(err error, data interface{}) {
		if perr := safely(func() { user(err, data) }); perr != nil {
			k(perr, nil)
			return
		}
		k(err, data)
	}
	return nil
}
