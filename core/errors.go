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

// These errors are user errors, not internal errors.  The strings are
// part of the wire-level contract: callers compare against them, so
// don't change them.

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout reports that a receive timer expired.
	ErrTimeout = errors.New("timed out")

	// ErrBusy reports that an operation needed an idle
	// Conversation but didn't get one.
	ErrBusy = errors.New("AT busy")

	// ErrNotBusy reports that Stop (or an internal continuation
	// install) needed a live operation but didn't find one.
	ErrNotBusy = errors.New("AT not busy")
)

// HandlerPanic wraps a panic from user code (a Receiver, a registered
// handler, or a completion callback) so that it can travel the normal
// error route.  A panic whose value is already an error travels as
// that error, unwrapped.
type HandlerPanic struct {
	Value interface{}
}

func (e *HandlerPanic) Error() string {
	return fmt.Sprintf("handler panic: %v", e.Value)
}

// safely runs f, converting a panic into an error.
func safely(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, is := r.(error); is {
				err = e
			} else {
				err = &HandlerPanic{r}
			}
		}
	}()
	f()
	return
}
