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
	"strings"
	"testing"

	"github.com/Comcast/palaver/match"
)

// run feeds tokens to a compiled Receiver, expecting Repeat until the
// last token completes.
func run(t *testing.T, r Receiver, tokens ...string) interface{} {
	t.Helper()
	for i, token := range tokens {
		v, err := r(token)
		if err != nil {
			t.Fatalf("token %d %q: %s", i, token, err)
		}
		if i < len(tokens)-1 {
			if v != Repeat {
				t.Fatalf("token %d %q: wanted Repeat, got %#v", i, token, v)
			}
			continue
		}
		return v
	}
	return nil
}

func TestExpectOrdered(t *testing.T) {
	r := MustExpect([]interface{}{"1", "2", "3", "4"}, NoFlags, -1)
	got := run(t, r, "1", "2", "3", "4")
	if got != "4" {
		t.Fatalf(`wanted "4", got %#v`, got)
	}
}

func TestExpectOrderedSelectIndex(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b", "c"}, NoFlags, 1)
	if got := run(t, r, "a", "b", "c"); got != "b" {
		t.Fatalf(`wanted "b", got %#v`, got)
	}

	// Out-of-range select indexes normalize to the last.
	r = MustExpect([]interface{}{"a", "b"}, NoFlags, 7)
	if got := run(t, r, "a", "b"); got != "b" {
		t.Fatalf(`wanted "b", got %#v`, got)
	}
}

func TestExpectScalarLift(t *testing.T) {
	r := MustExpect("OK", NoFlags, -1)
	if got := run(t, r, "OK"); got != "OK" {
		t.Fatalf(`wanted "OK", got %#v`, got)
	}
}

func TestExpectOrderedMismatch(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b"}, NoFlags, -1)
	if v, err := r("a"); err != nil || v != Repeat {
		t.Fatalf("bad first step: %#v %v", v, err)
	}
	_, err := r("zzz")
	if err == nil {
		t.Fatal("wanted a mismatch error")
	}
	want := `expected "b" but got "zzz"`
	if err.Error() != want {
		t.Fatalf("wanted %q, got %q", want, err.Error())
	}
}

func TestExpectIgnoreNonMatching(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b"}, IgnoreNonMatching, -1)
	got := run(t, r, "noise", "a", "more noise", "b")
	if got != "b" {
		t.Fatalf(`wanted "b", got %#v`, got)
	}
}

func TestExpectUnorderedIgnoring(t *testing.T) {
	r := MustExpect(
		[]interface{}{"a", match.Rx("b.")},
		Unordered|IgnoreNonMatching,
		-1)
	got := run(t, r, "ba", "bb", "a")
	if got != "ba" {
		t.Fatalf(`wanted "ba", got %#v`, got)
	}
}

func TestExpectUnorderedMismatch(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b"}, Unordered, -1)
	_, err := r("zzz")
	if err == nil {
		t.Fatal("wanted a mismatch error")
	}
	want := `no match for data "zzz"`
	if err.Error() != want {
		t.Fatalf("wanted %q, got %q", want, err.Error())
	}
}

func TestExpectRepeatsCollectAll(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b"}, AllowRepeats|CollectAll, -1)
	got := run(t, r, "a", "a", "b")
	want := []interface{}{"a", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wanted %#v, got %#v", want, got)
	}
}

// TestExpectCollectAllLength: ordered completion without repeats
// collects exactly one value per spec.
func TestExpectCollectAllLength(t *testing.T) {
	es := []interface{}{"a", "b", "c"}
	r := MustExpect(es, CollectAll, -1)
	got := run(t, r, "a", "b", "c").([]interface{})
	if len(got) != len(es) {
		t.Fatalf("wanted %d collected, got %d", len(es), len(got))
	}
}

func TestExpectUseMatchResult(t *testing.T) {
	r := MustExpect(
		[]interface{}{match.Rx(`^\+CSQ: (\d+)`), "OK"},
		UseMatchResult,
		0)
	got := run(t, r, "+CSQ: 23", "OK")
	ss, is := got.([]string)
	if !is || ss[1] != "23" {
		t.Fatalf("wanted submatches, got %#v", got)
	}
}

// TestExpectUnorderedCompleteness: without repeats, every spec is
// satisfied exactly once on completion.
func TestExpectUnorderedCompleteness(t *testing.T) {
	r := MustExpect([]interface{}{"a", "b", "c"}, Unordered|CollectAll, -1)
	got := run(t, r, "c", "a", "b").([]interface{})
	sorted := make([]string, len(got))
	for i, x := range got {
		sorted[i] = x.(string)
	}
	if strings.Join(sorted, "") != "cab" {
		t.Fatalf("bad collection %#v", got)
	}
}

func TestExpectUnorderedRepeats(t *testing.T) {
	// With repeats, an already-satisfied spec keeps matching;
	// completion still needs every spec at least once.
	r := MustExpect([]interface{}{"a", "b"}, Unordered|AllowRepeats|CollectAll, -1)
	got := run(t, r, "a", "a", "b")
	want := []interface{}{"a", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wanted %#v, got %#v", want, got)
	}
}

func TestExpectEmpty(t *testing.T) {
	if _, err := Expect([]interface{}{}, NoFlags, -1); err == nil {
		t.Fatal("wanted a compile error for an empty expectation")
	}
}

func TestExpectCannotMatch(t *testing.T) {
	r := MustExpect([]interface{}{42}, NoFlags, -1)
	if _, err := r("x"); err == nil {
		t.Fatal("wanted a CannotMatch")
	}
}

// TestExpectInsideReceive compiles an expectation and runs it through
// the engine.
func TestExpectInsideReceive(t *testing.T) {
	c, _, _ := newTestConversation()

	var got interface{}
	c.Receive(0, MustExpect([]interface{}{"1", "2", "3", "4"}, NoFlags, -1),
		func(err error, data interface{}) {
			if err != nil {
				t.Fatal(err)
			}
			got = data
		})
	for _, token := range []string{"1", "2", "3", "4"} {
		c.Feed(token)
	}
	if got != "4" {
		t.Fatalf(`wanted "4", got %#v`, got)
	}
}
