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

package testutil

import (
	"time"

	"github.com/Comcast/palaver/core"
)

// FakeScheduler is a core.Scheduler driven by hand: nothing fires
// until Advance moves the fake clock.  Tests use it to make timeout
// behavior deterministic.
type FakeScheduler struct {
	Now time.Duration

	timers []*fakeTimer
}

type fakeTimer struct {
	at        time.Duration
	f         func()
	cancelled bool
}

func (t *fakeTimer) Cancel() {
	t.cancelled = true
}

func (s *FakeScheduler) Schedule(d time.Duration, f func()) core.Timer {
	t := &fakeTimer{
		at: s.Now + d,
		f:  f,
	}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in time order.
// A fired callback may schedule again; anything it schedules within
// the window fires in the same Advance.
func (s *FakeScheduler) Advance(d time.Duration) {
	target := s.Now + d
	for {
		best := -1
		for i, t := range s.timers {
			if t.cancelled || target < t.at {
				continue
			}
			if best < 0 || t.at < s.timers[best].at {
				best = i
			}
		}
		if best < 0 {
			break
		}
		t := s.timers[best]
		s.timers = append(s.timers[:best], s.timers[best+1:]...)
		s.Now = t.at
		t.f()
	}
	s.Now = target
}

// Pending counts armed, uncancelled timers.
func (s *FakeScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}
