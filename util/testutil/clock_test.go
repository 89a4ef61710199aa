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
	"testing"
	"time"
)

func TestFakeSchedulerOrder(t *testing.T) {
	s := &FakeScheduler{}

	var fired []string
	s.Schedule(3*time.Second, func() { fired = append(fired, "c") })
	s.Schedule(time.Second, func() { fired = append(fired, "a") })
	s.Schedule(2*time.Second, func() { fired = append(fired, "b") })

	s.Advance(10 * time.Second)
	if got := len(fired); got != 3 {
		t.Fatalf("wanted 3 fires, got %d", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if fired[i] != want {
			t.Fatalf("bad order %#v", fired)
		}
	}
}

func TestFakeSchedulerCancel(t *testing.T) {
	s := &FakeScheduler{}

	h := s.Schedule(time.Second, func() { t.Fatal("cancelled timer fired") })
	h.Cancel()
	if s.Pending() != 0 {
		t.Fatal("cancelled timer still pending")
	}
	s.Advance(time.Hour)
}

// TestFakeSchedulerReschedule: a callback that schedules within the
// window fires in the same Advance.
func TestFakeSchedulerReschedule(t *testing.T) {
	s := &FakeScheduler{}

	var fired []time.Duration
	s.Schedule(time.Second, func() {
		fired = append(fired, s.Now)
		s.Schedule(time.Second, func() {
			fired = append(fired, s.Now)
		})
	})

	s.Advance(5 * time.Second)
	if len(fired) != 2 || fired[0] != time.Second || fired[1] != 2*time.Second {
		t.Fatalf("bad fires %#v", fired)
	}
	if s.Now != 5*time.Second {
		t.Fatalf("clock didn't land on the target: %v", s.Now)
	}
}

func TestJS(t *testing.T) {
	if got := JS(map[string]interface{}{"a": 1}); got != `{"a":1}` {
		t.Fatalf("bad JS %q", got)
	}
}
