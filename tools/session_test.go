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

package tools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/palaver/core"
)

// cannedPartner answers each sent token with canned reply lines.
func cannedPartner(replies map[string][]string) (*core.Conversation, func()) {
	out := make(chan string, 16)
	c := core.NewConversation(func(token string) error {
		out <- token
		return nil
	})
	done := make(chan bool)
	go func() {
		for {
			select {
			case <-done:
				return
			case token := <-out:
				// Let the command's receive install first.
				for i := 0; i < 1000 && !c.Busy(); i++ {
					time.Sleep(time.Millisecond)
				}
				for _, r := range replies[token] {
					c.Feed(r)
				}
			}
		}
	}()
	return c, func() { close(done) }
}

func TestSessionRun(t *testing.T) {
	bs := []byte(`
doc: |
  Check registration and signal quality.
steps:
  - doc: No echo, please.
    send: ATE0
    expect:
      - OK
  - send: AT+CSQ
    expect:
      - re: '^\+CSQ: (\d+)'
      - OK
    flags: [useMatchResult]
    select: 0
    guard: "return 0 < parseInt(_.data[1]);"
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s.Doc, "registration") {
		t.Fatalf("bad doc %q", s.Doc)
	}
	if len(s.Steps) != 2 {
		t.Fatalf("wanted 2 steps, got %d", len(s.Steps))
	}

	c, stop := cannedPartner(map[string][]string{
		"ATE0":   {"OK"},
		"AT+CSQ": {"+CSQ: 23,99", "OK"},
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Run(ctx, c); err != nil {
		t.Fatal(err)
	}
}

func TestSessionGuardFailure(t *testing.T) {
	bs := []byte(`
steps:
  - send: AT+CSQ
    expect:
      - re: '^\+CSQ: (\d+)'
      - OK
    flags: [useMatchResult]
    select: 0
    guard: "return 10 < parseInt(_.data[1]);"
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}

	c, stop := cannedPartner(map[string][]string{
		"AT+CSQ": {"+CSQ: 3,99", "OK"},
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Run(ctx, c); err == nil {
		t.Fatal("wanted the guard to fail the session")
	}
}

func TestSessionMismatch(t *testing.T) {
	bs := []byte(`
steps:
  - send: AT
    expect:
      - OK
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}

	c, stop := cannedPartner(map[string][]string{
		"AT": {"ERROR"},
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = s.Run(ctx, c)
	if err == nil {
		t.Fatal("wanted a mismatch error")
	}
	if !strings.Contains(err.Error(), "expected") {
		t.Fatalf("wanted the mismatch text, got %q", err.Error())
	}
}

func TestSessionWaitStep(t *testing.T) {
	bs := []byte(`
steps:
  - wait: 50000000
  - send: AT
    expect:
      - OK
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}
	if s.Steps[0].Wait != 50*time.Millisecond {
		t.Fatalf("bad wait %v", s.Steps[0].Wait)
	}

	c, stop := cannedPartner(map[string][]string{
		"AT": {"OK"},
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	then := time.Now()
	if err := s.Run(ctx, c); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Now().Sub(then); elapsed < 50*time.Millisecond {
		t.Fatalf("wait didn't wait (%v)", elapsed)
	}
}

func TestSessionBadFlag(t *testing.T) {
	bs := []byte(`
steps:
  - send: AT
    expect: [OK]
    flags: [sideways]
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}

	c := core.NewConversation(func(string) error { return nil })
	if err := s.Run(context.Background(), c); err == nil {
		t.Fatal("wanted a compile error")
	}
}

func TestSessionAnyOfPattern(t *testing.T) {
	bs := []byte(`
steps:
  - send: AT+COPS?
    expect:
      - - OK
        - ERROR
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}

	c, stop := cannedPartner(map[string][]string{
		"AT+COPS?": {"ERROR"},
	})
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Run(ctx, c); err != nil {
		t.Fatal(err)
	}
}

func TestRenderSessionHTML(t *testing.T) {
	bs := []byte(`
doc: |
  # Signal check
steps:
  - doc: The *query*.
    send: AT+CSQ
    expect:
      - re: '^\+CSQ'
      - OK
`)
	s, err := LoadSession(bs)
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if err := RenderSessionHTML(s, &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"Signal check", "AT+CSQ", "stepDoc"} {
		if !strings.Contains(got, want) {
			t.Fatalf("wanted %q in the HTML:\n%s", want, got)
		}
	}
}
