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

package match

import (
	"strings"
	"testing"
)

func TestLiteral(t *testing.T) {
	v, err := Match("OK", "OK")
	if err != nil {
		t.Fatal(err)
	}
	if !Matched(v) {
		t.Fatal("literal didn't match itself")
	}

	if v, _ = Match("OK", "ERROR"); Matched(v) {
		t.Fatal("literal matched something else")
	}
}

func TestBools(t *testing.T) {
	if v, _ := Match(true, "anything"); !Matched(v) {
		t.Fatal("true didn't match")
	}
	if v, _ := Match(false, "anything"); Matched(v) {
		t.Fatal("false matched")
	}
}

func TestPredicate(t *testing.T) {
	p := func(s string) interface{} {
		if strings.HasPrefix(s, "+CREG:") {
			return strings.TrimSpace(s[len("+CREG:"):])
		}
		return nil
	}
	v, err := Match(p, "+CREG: 0,1")
	if err != nil {
		t.Fatal(err)
	}
	if v != "0,1" {
		t.Fatalf("wanted payload, got %#v", v)
	}
	if v, _ = Match(p, "RING"); Matched(v) {
		t.Fatal("predicate matched junk")
	}
}

func TestPredicateFalsyPayloads(t *testing.T) {
	// 0 and "" are matches; only nil and false are not.
	zero := func(string) interface{} { return 0 }
	if v, _ := Match(zero, "x"); !Matched(v) {
		t.Fatal("0 should be a match")
	}
	empty := func(string) interface{} { return "" }
	if v, _ := Match(empty, "x"); !Matched(v) {
		t.Fatal(`"" should be a match`)
	}
}

func TestRegexp(t *testing.T) {
	v, err := Match(Rx(`^\+CSQ: (\d+),(\d+)$`), "+CSQ: 23,99")
	if err != nil {
		t.Fatal(err)
	}
	ss, is := v.([]string)
	if !is {
		t.Fatalf("wanted submatches, got %#v", v)
	}
	if len(ss) != 3 || ss[1] != "23" {
		t.Fatalf("bad submatches %#v", ss)
	}

	if v, _ = Match(Rx("^OK$"), "ERROR"); Matched(v) {
		t.Fatal("regexp matched junk")
	}
}

func TestAnyOf(t *testing.T) {
	spec := []interface{}{"OK", Rx("^ERROR")}
	if v, _ := Match(spec, "OK"); v != true {
		t.Fatalf("wanted the literal's value, got %#v", v)
	}
	v, _ := Match(spec, "ERROR: 4")
	if _, is := v.([]string); !is {
		t.Fatalf("wanted the regexp's value, got %#v", v)
	}
	if v, _ = Match(spec, "RING"); Matched(v) {
		t.Fatal("any-of matched junk")
	}

	// Nesting recurses.
	nested := []interface{}{[]interface{}{"a", "b"}, "c"}
	if v, _ := Match(nested, "b"); !Matched(v) {
		t.Fatal("nested any-of didn't recurse")
	}
}

func TestCannotMatch(t *testing.T) {
	_, err := Match(42, "x")
	if err == nil {
		t.Fatal("wanted a CannotMatch")
	}
	if _, is := err.(*CannotMatch); !is {
		t.Fatalf("wanted a CannotMatch, got %T", err)
	}

	// An unknown spec inside an any-of surfaces, too.
	if _, err = Match([]interface{}{"ok", 42}, "x"); err == nil {
		t.Fatal("wanted a CannotMatch from inside any-of")
	}
}

func TestExpectMatch(t *testing.T) {
	if _, err := ExpectMatch("OK", "OK"); err != nil {
		t.Fatal(err)
	}
	_, err := ExpectMatch("OK", "ERROR")
	if err == nil {
		t.Fatal("wanted an error")
	}
	want := `expected "OK" but got "ERROR"`
	if err.Error() != want {
		t.Fatalf("wanted %q, got %q", want, err.Error())
	}
}
