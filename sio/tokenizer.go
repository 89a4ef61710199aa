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

package sio

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"github.com/Comcast/palaver/core"
)

// DefaultDebounce is how long a LineTokenizer waits for more bytes
// before flushing a partial line.
var DefaultDebounce = 100 * time.Millisecond

// LineTokenizer turns a byte stream into conversation tokens: strip
// NULs, split on CR, left-strip the remainder, emit non-empty
// stripped lines.
//
// A line that arrives split across transport packets would otherwise
// sit in the buffer until its CR shows up, so the tokenizer also
// flushes the buffer after Debounce of inactivity.
type LineTokenizer struct {
	// Emit receives each token.
	Emit func(token string)

	// Debounce is the inactivity window before a partial line is
	// flushed.  Zero means DefaultDebounce; negative disables the
	// flush entirely.
	Debounce time.Duration

	// Timers schedules the debounce flush.  Nil means
	// core.Wallclock.
	Timers core.Scheduler

	mu    sync.Mutex
	buf   []byte
	timer core.Timer
}

// NewLineTokenizer makes a LineTokenizer that hands tokens to emit.
func NewLineTokenizer(emit func(token string)) *LineTokenizer {
	return &LineTokenizer{
		Emit: emit,
	}
}

func (t *LineTokenizer) sched() core.Scheduler {
	if t.Timers == nil {
		return core.Wallclock
	}
	return t.Timers
}

// Write buffers bytes and emits any completed tokens.  Always
// succeeds (the signature is for io.Writer's benefit).
func (t *LineTokenizer) Write(p []byte) (int, error) {
	t.mu.Lock()

	for _, b := range p {
		if b == 0 {
			continue
		}
		t.buf = append(t.buf, b)
	}

	var tokens []string
	for {
		i := bytes.IndexByte(t.buf, '\r')
		if i < 0 {
			break
		}
		token := strings.TrimSpace(string(t.buf[:i]))
		t.buf = bytes.TrimLeft(t.buf[i+1:], " \t\r\n")
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	t.rearm()
	emit := t.Emit
	t.mu.Unlock()

	if emit != nil {
		for _, token := range tokens {
			emit(token)
		}
	}

	return len(p), nil
}

// rearm must be called with t.mu held.
func (t *LineTokenizer) rearm() {
	if t.timer != nil {
		t.timer.Cancel()
		t.timer = nil
	}
	if t.Debounce < 0 || len(t.buf) == 0 {
		return
	}
	d := t.Debounce
	if d == 0 {
		d = DefaultDebounce
	}
	var h core.Timer
	h = t.sched().Schedule(d, func() {
		t.mu.Lock()
		if t.timer != h {
			t.mu.Unlock()
			return
		}
		t.flush()
	})
	t.timer = h
}

// Flush emits whatever partial line is buffered.
func (t *LineTokenizer) Flush() {
	t.mu.Lock()
	t.flush()
}

// flush must be called with t.mu held; returns with t.mu released.
func (t *LineTokenizer) flush() {
	if t.timer != nil {
		t.timer.Cancel()
		t.timer = nil
	}
	token := strings.TrimSpace(string(t.buf))
	t.buf = nil
	emit := t.Emit
	t.mu.Unlock()

	if token != "" && emit != nil {
		emit(token)
	}
}
