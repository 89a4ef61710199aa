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
	"fmt"
)

// Seq drives a script of steps to completion.
//
// script is either a finite []interface{} or a nullary generator
// func() interface{} that's pulled until it yields nil.  The
// generator form is the useful one: each pull can do work (say, start
// a Cmd) and then yield its step.
//
// Each step is one of:
//
//  1. An async step, func(Done): Seq calls it with a continuation.
//     An error delivered there ends the sequence with that error.
//
//  2. The Conversation itself: the step already began a receive or a
//     wait on this Conversation (Receive, Cmd, and Wait return the
//     Conversation to make this read well), and Seq chains its
//     continuation onto that operation's completion.  A callback the
//     step supplied itself runs first; a panic there becomes the step
//     error.
//
//  3. Anything else: the step's synchronous result.
//
// On exhaustion, onDone gets (nil, data) where data is the last
// step's produced value.  A pull panic or a step error ends the
// sequence with (err, nil).  Seq requires an idle Conversation;
// Stop ends only the step in flight, which Seq observes like any
// other step completion.
//
//	c.Seq(func() interface{} {
//		switch i++; i {
//		case 1:
//			return c.Cmd("ATE0", 0, nil, nil)
//		case 2:
//			return c.Cmd("AT+CREG?", 0, creg, nil)
//		}
//		return nil
//	}, done)
func (c *Conversation) Seq(script interface{}, onDone Done) {
	c.mu.Lock()
	if c.busy() {
		c.mu.Unlock()
		c.reject(ErrBusy, onDone)
		return
	}
	c.mu.Unlock()

	next, err := stepper(script)
	if err != nil {
		c.reject(err, onDone)
		return
	}

	done := func(err error, data interface{}) {
		if onDone != nil {
			onDone(err, data)
			return
		}
		if err != nil {
			c.toUnhandled(err, nil)
		}
	}

	var (
		last    interface{}
		advance func()
	)
	advance = func() {
		for {
			step, ok, err := next()
			if err != nil {
				done(err, nil)
				return
			}
			if !ok {
				done(nil, last)
				return
			}

			// The continuation trampoline: a step that
			// completes synchronously keeps this loop
			// going; one that completes later re-enters
			// advance.
			var (
				async   bool
				resumed bool
				failed  bool
			)
			k := func(err error, data interface{}) {
				if resumed {
					return
				}
				resumed = true
				if err != nil {
					failed = true
					done(err, nil)
					return
				}
				last = data
				if async {
					advance()
				}
			}

			switch vv := step.(type) {
			case func(Done):
				if perr := safely(func() { vv(k) }); perr != nil {
					done(perr, nil)
					return
				}
			case *Conversation:
				if vv != c {
					// Some other instance is just a value.
					last = step
					continue
				}
				if err := c.wrapOnDone(k); err != nil {
					done(err, nil)
					return
				}
			default:
				last = step
				continue
			}

			if resumed {
				if failed {
					return
				}
				continue
			}
			async = true
			return
		}
	}
	advance()
}

// stepper normalizes a script into a lazy puller.
func stepper(script interface{}) (func() (interface{}, bool, error), error) {
	switch vv := script.(type) {
	case func() interface{}:
		return func() (step interface{}, ok bool, err error) {
			err = safely(func() { step = vv() })
			if err != nil {
				return nil, false, err
			}
			if step == nil {
				return nil, false, nil
			}
			return step, true, nil
		}, nil
	case []interface{}:
		i := 0
		return func() (interface{}, bool, error) {
			if len(vv) <= i {
				return nil, false, nil
			}
			step := vv[i]
			i++
			return step, true, nil
		}, nil
	default:
		return nil, fmt.Errorf("cannot sequence a %T", script)
	}
}
