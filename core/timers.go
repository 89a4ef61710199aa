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
	"time"
)

// Timer is a handle for a scheduled callback.
type Timer interface {
	// Cancel stops the timer.  The Conversation additionally
	// checks handle identity when a timer fires, so a cancelled
	// handle never acts even if the cancellation raced the fire.
	Cancel()
}

// Scheduler is the host timer primitive that a Conversation uses for
// receive timeouts and waits.
//
// Wallclock is the obvious implementation.  Tests inject something
// they can control.
type Scheduler interface {
	Schedule(d time.Duration, f func()) Timer
}

// Wallclock schedules on the real clock via time.AfterFunc.
var Wallclock Scheduler = wallclock{}

type wallclock struct{}

func (wallclock) Schedule(d time.Duration, f func()) Timer {
	return wallTimer{time.AfterFunc(d, f)}
}

type wallTimer struct {
	t *time.Timer
}

func (t wallTimer) Cancel() {
	t.t.Stop()
}
