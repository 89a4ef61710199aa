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
	"errors"
	"fmt"

	"github.com/Comcast/palaver/match"
)

// Flags adjust how Expect interprets its pattern.  The values are
// fixed and OR-combinable.
type Flags int

const (
	NoFlags Flags = 0

	// Unordered accepts the expected tokens in any order.
	Unordered Flags = 1

	// IgnoreNonMatching skips tokens that match nothing instead
	// of failing.
	IgnoreNonMatching Flags = 2

	// AllowRepeats tolerates (ordered) or counts (unordered)
	// repeated matches of an already-satisfied spec.
	AllowRepeats Flags = 4

	// CollectAll completes with the list of every saved token
	// instead of the one at the select index.
	CollectAll Flags = 8

	// UseMatchResult saves match values (say, regexp submatches)
	// instead of raw tokens.
	UseMatchResult Flags = 16
)

// Has reports whether all of the given flags are set.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// Expect compiles a declarative pattern into a Receiver.
//
// pattern is a sequence of specs (see package match); a scalar spec
// is lifted to a sequence of one.  n selects which matched token the
// operation completes with; out-of-range (say, -1) means the last.
// The compiled Receiver is stateful and single-use: install it into
// exactly one Receive.
//
//	// OK after one or more +CSQ lines, completing with the +CSQ
//	// submatches.
//	r, err := core.Expect(
//		[]interface{}{match.Rx(`^\+CSQ: (\d+),(\d+)`), "OK"},
//		core.AllowRepeats|core.UseMatchResult,
//		0)
func Expect(pattern interface{}, flags Flags, n int) (Receiver, error) {
	es, is := pattern.([]interface{})
	if !is {
		es = []interface{}{pattern}
	}
	if len(es) == 0 {
		return nil, errors.New("empty expectation")
	}
	if n < 0 || len(es) <= n {
		n = len(es) - 1
	}
	if flags.Has(Unordered) {
		return expectUnordered(es, flags, n), nil
	}
	return expectOrdered(es, flags, n), nil
}

// MustExpect is Expect for patterns known good at compile time.
func MustExpect(pattern interface{}, flags Flags, n int) Receiver {
	r, err := Expect(pattern, flags, n)
	if err != nil {
		panic(err)
	}
	return r
}

func expectOrdered(es []interface{}, flags Flags, n int) Receiver {
	var (
		i         int
		collected interface{}
		all       []interface{}
	)
	return func(token string) (interface{}, error) {
		v, err := match.Match(es[i], token)
		if err != nil {
			return nil, err
		}
		advance := match.Matched(v)

		matched := advance
		if !matched && flags.Has(AllowRepeats) && 0 < i {
			rv, err := match.Match(es[i-1], token)
			if err != nil {
				return nil, err
			}
			if match.Matched(rv) {
				// A repeat of the previous spec; doesn't advance.
				matched, v = true, rv
			}
		}
		if !matched {
			if flags.Has(IgnoreNonMatching) {
				return Repeat, nil
			}
			return nil, fmt.Errorf(`expected "%s" but got "%s"`,
				match.Stringify(es[i]), token)
		}

		save := interface{}(token)
		if flags.Has(UseMatchResult) {
			save = v
		}
		if flags.Has(CollectAll) {
			all = append(all, save)
		} else if advance && i == n {
			collected = save
		}
		if advance {
			i++
		}
		if i == len(es) {
			if flags.Has(CollectAll) {
				return all, nil
			}
			return collected, nil
		}
		return Repeat, nil
	}
}

func expectUnordered(es []interface{}, flags Flags, n int) Receiver {
	var (
		remaining = len(es)
		found     = make([]int, len(es))
		collected interface{}
		all       []interface{}
	)
	return func(token string) (interface{}, error) {
		hit := -1
		var hv interface{}
		for j, e := range es {
			if !flags.Has(AllowRepeats) && 0 < found[j] {
				continue
			}
			v, err := match.Match(e, token)
			if err != nil {
				return nil, err
			}
			if match.Matched(v) {
				hit, hv = j, v
				break
			}
		}
		if hit < 0 {
			if flags.Has(IgnoreNonMatching) {
				return Repeat, nil
			}
			return nil, fmt.Errorf(`no match for data "%s"`, token)
		}

		save := interface{}(token)
		if flags.Has(UseMatchResult) {
			save = hv
		}
		if flags.Has(CollectAll) {
			all = append(all, save)
		} else if hit == n {
			collected = save
		}
		if found[hit]++; found[hit] == 1 {
			remaining--
		}
		if remaining == 0 {
			if flags.Has(CollectAll) {
				return all, nil
			}
			return collected, nil
		}
		return Repeat, nil
	}
}
