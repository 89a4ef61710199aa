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

// Package tools has session scripts: declarative, YAML-friendly
// dialogues that drive a Conversation for testing and provisioning.
//
// A Session is a sequence of Steps.  A Step can send a token, expect
// a response pattern, or both, or it can pause; a Step that pauses
// does nothing else (its Send and Expect are not used).  A Step can
// also guard its result with a bit of ECMAScript.
//
// See ../cmd/atexpect for command-line use.
package tools

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/Comcast/palaver/core"
	"github.com/Comcast/palaver/interpreters/goja"
	"github.com/Comcast/palaver/match"

	"github.com/jsccast/yaml"
)

// Step is one step of a Session.
type Step struct {
	// Doc is an opaque documentation string (markdown welcome;
	// see RenderSessionHTML).
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Send is a token to send.  With no Expect, the step
	// completes as soon as the token is written.
	Send string `json:"send,omitempty" yaml:"send,omitempty"`

	// Expect is a sequence of patterns for the response.  Each
	// pattern is a string literal, a {"re": ...} regular
	// expression, a {"js": ...} predicate source, or a list of
	// those (any-of).
	Expect []interface{} `json:"expect,omitempty" yaml:"expect,omitempty"`

	// Flags name expectation flags: unordered,
	// ignoreNonMatching, allowRepeats, collectAll,
	// useMatchResult.
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`

	// Select picks which matched token the step's data is (default:
	// the last).
	Select *int `json:"select,omitempty" yaml:"select,omitempty"`

	// Timeout is the optional timeout for this step.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Wait pauses the conversation (busy, dropping partner
	// chatter) for the duration.  A step with a Wait does not
	// send or expect anything.
	Wait time.Duration `json:"wait,omitempty" yaml:"wait,omitempty"`

	// Guard is ECMAScript evaluated against the step's data at
	// _.data; a non-truthy result fails the session.
	Guard string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// Session is mostly a sequence of Steps.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Steps is the sequence of Steps this session will run.
	Steps []Step `json:"steps" yaml:"steps"`

	// DefaultTimeout is the default timeout for each Step.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	interp *goja.Interpreter
}

// LoadSession parses a YAML Session.
func LoadSession(bs []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.Verbose {
		log.Printf(format, args...)
	}
}

func (s *Session) interpreter() *goja.Interpreter {
	if s.interp == nil {
		s.interp = goja.NewInterpreter()
	}
	return s.interp
}

// compileSpec turns a YAML-friendly pattern into a match spec.
func (s *Session) compileSpec(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case string:
		return vv, nil
	case []interface{}:
		specs := make([]interface{}, len(vv))
		for i, y := range vv {
			spec, err := s.compileSpec(y)
			if err != nil {
				return nil, err
			}
			specs[i] = spec
		}
		return specs, nil
	case map[string]interface{}:
		if re, have := vv["re"]; have {
			src, is := re.(string)
			if !is {
				return nil, fmt.Errorf("bad re pattern %#v", re)
			}
			rx, err := regexp.Compile(src)
			if err != nil {
				return nil, err
			}
			return match.Regexp{Regexp: rx}, nil
		}
		if js, have := vv["js"]; have {
			src, is := js.(string)
			if !is {
				return nil, fmt.Errorf("bad js pattern %#v", js)
			}
			return s.interpreter().Predicate(src)
		}
		return nil, fmt.Errorf("bad pattern %#v", vv)
	default:
		return nil, fmt.Errorf("bad pattern %#v (%T)", x, x)
	}
}

// parseFlags resolves flag names.
func parseFlags(names []string) (core.Flags, error) {
	flags := core.NoFlags
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case "unordered":
			flags |= core.Unordered
		case "ignoreNonMatching":
			flags |= core.IgnoreNonMatching
		case "allowRepeats":
			flags |= core.AllowRepeats
		case "collectAll":
			flags |= core.CollectAll
		case "useMatchResult":
			flags |= core.UseMatchResult
		default:
			return 0, fmt.Errorf("unknown flag '%s'", name)
		}
	}
	return flags, nil
}

// compile builds the pieces a step needs at run time.
func (s *Session) compile(step *Step) (core.Receiver, func(interface{}) error, error) {
	var (
		r     core.Receiver
		guard func(interface{}) error
	)

	if 0 < len(step.Expect) {
		specs := make([]interface{}, len(step.Expect))
		for i, x := range step.Expect {
			spec, err := s.compileSpec(x)
			if err != nil {
				return nil, nil, err
			}
			specs[i] = spec
		}
		flags, err := parseFlags(step.Flags)
		if err != nil {
			return nil, nil, err
		}
		n := -1
		if step.Select != nil {
			n = *step.Select
		}
		if r, err = core.Expect(specs, flags, n); err != nil {
			return nil, nil, err
		}
	}

	if step.Guard != "" {
		g, err := s.interpreter().Guard(step.Guard)
		if err != nil {
			return nil, nil, err
		}
		guard = g
	}

	return r, guard, nil
}

// Run drives the Session's steps through the Conversation and blocks
// until the session completes (or the context gives out).
//
// The Conversation should already be coupled to the partner, and it
// must be idle.
func (s *Session) Run(ctx context.Context, c *core.Conversation) error {

	// Compile everything first so a typo in step seven doesn't
	// waste a six-step conversation.
	type compiled struct {
		step  Step
		r     core.Receiver
		guard func(interface{}) error
	}
	steps := make([]compiled, len(s.Steps))
	for i, step := range s.Steps {
		r, guard, err := s.compile(&step)
		if err != nil {
			return fmt.Errorf("step %d: %s", i, err)
		}
		steps[i] = compiled{step, r, guard}
	}

	var (
		i    int
		errs = make(chan error, 1)
	)
	script := func() interface{} {
		if len(steps) <= i {
			return nil
		}
		cs := steps[i]
		i++
		s.logf("session step %d", i)

		// A guard rides on the step's completion callback.  A
		// guard failure panics there, which the sequencer
		// converts to the step's error.
		var onDone core.Done
		if cs.guard != nil {
			guard := cs.guard
			onDone = func(err error, data interface{}) {
				if err != nil {
					return
				}
				if gerr := guard(data); gerr != nil {
					panic(gerr)
				}
			}
		}

		timeout := cs.step.Timeout
		if timeout <= 0 {
			timeout = s.DefaultTimeout
		}

		switch {
		case 0 < cs.step.Wait:
			return c.Wait(cs.step.Wait, onDone)
		case cs.r != nil && cs.step.Send != "":
			return c.Cmd(cs.step.Send, timeout, cs.r, onDone)
		case cs.r != nil:
			return c.Receive(timeout, cs.r, onDone)
		case cs.step.Send != "":
			send := cs.step.Send
			return func(k core.Done) {
				k(c.ForceSend(send), nil)
			}
		default:
			// A step with nothing to do still yields its doc
			// as a value.
			return cs.step.Doc
		}
	}

	c.Seq(script, func(err error, data interface{}) {
		errs <- err
	})

	select {
	case <-ctx.Done():
		c.Stop(ctx.Err(), nil)
		return ctx.Err()
	case err := <-errs:
		return err
	}
}
