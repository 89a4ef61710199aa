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
	"reflect"

	"github.com/Comcast/palaver/match"
)

// Handler handles an unsolicited token.  Returning false means "not
// actually relevant": the engine continues as if this registration
// hadn't matched.
type Handler func(token string) bool

// registration is one (spec, handler) pair for unsolicited input.
type registration struct {
	spec    interface{}
	handler Handler
}

// Register appends a (spec, handler) pair for unsolicited input.
//
// Registrations form an override stack: on each inbound token the
// newest registrations are tried first, and the first handler that
// accepts (returns true) consumes the token.
//
// With dedupe, prior registrations with an equal spec are removed
// first.  Equality is ==, for comparable specs, and reference
// identity otherwise, so pass the same key value you registered
// with.
func (c *Conversation) Register(spec interface{}, dedupe bool, h Handler) {
	c.mu.Lock()
	if dedupe {
		c.removeRegistrations(spec, true)
	}
	c.registry = append(c.registry, &registration{spec, h})
	c.mu.Unlock()
}

// Deregister removes the most recent registration with an equal spec,
// or all of them.
func (c *Conversation) Deregister(spec interface{}, all bool) {
	c.mu.Lock()
	c.removeRegistrations(spec, all)
	c.mu.Unlock()
}

// DeregisterAll empties the registry.
func (c *Conversation) DeregisterAll() {
	c.mu.Lock()
	c.registry = nil
	c.mu.Unlock()
}

// removeRegistrations must be called with c.mu held.
func (c *Conversation) removeRegistrations(spec interface{}, all bool) {
	for i := len(c.registry) - 1; 0 <= i; i-- {
		if !specEqual(c.registry[i].spec, spec) {
			continue
		}
		c.registry = append(c.registry[:i], c.registry[i+1:]...)
		if !all {
			return
		}
	}
}

// specEqual compares specs for registry bookkeeping: == where that's
// legal, reference identity for funcs, slices, and maps.
func specEqual(a, b interface{}) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta != nil && !ta.Comparable() {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		switch va.Kind() {
		case reflect.Func, reflect.Slice, reflect.Map:
			return va.Pointer() == vb.Pointer()
		}
		return false
	}
	return a == b
}

// dispatchRegistry offers the token to registered handlers, newest
// first, and reports whether one consumed it.
//
// The scan runs over a snapshot, so a handler registered while
// handling token T first fires for token T+1.
func (c *Conversation) dispatchRegistry(token string) bool {
	c.mu.Lock()
	regs := make([]*registration, len(c.registry))
	copy(regs, c.registry)
	c.mu.Unlock()

	for i := len(regs) - 1; 0 <= i; i-- {
		v, err := match.Match(regs[i].spec, token)
		if err != nil {
			c.toUnhandled(err, nil)
			continue
		}
		if !match.Matched(v) {
			continue
		}
		var accepted bool
		if perr := safely(func() { accepted = regs[i].handler(token) }); perr != nil {
			c.toUnhandled(perr, nil)
			continue
		}
		if accepted {
			return true
		}
	}
	return false
}
