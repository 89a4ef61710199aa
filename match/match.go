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

// Package match evaluates declarative token specs.
//
// A spec describes what an acceptable token looks like.  A spec is
// just an interface{}, and Match dispatches on its dynamic type:
//
//	bool                  always/never matches
//	string                literal comparison
//	func(string) interface{}
//	                      arbitrary predicate; its return value is
//	                      the match value
//	Matcher               anything with a Match(string) interface{}
//	                      method (see Regexp for regular expressions)
//	[]interface{}         any-of; the first element that matches wins
//
// A spec "matches" when evaluation yields a value that is neither nil
// nor false.  Note that 0 and "" do count as matches.  The raw value
// is preserved so that callers can use it as a payload (for example
// regular expression submatches).
package match

import (
	"fmt"
	"regexp"
)

// Matcher is the open end of the spec type: anything with a Match
// method can be a spec.
type Matcher interface {
	Match(token string) interface{}
}

// Match evaluates the spec against the token and returns the raw
// match value.
//
// The result serves both as a boolean witness (see Matched) and as a
// possible payload.  An unintelligible spec gets you a *CannotMatch.
func Match(spec interface{}, token string) (interface{}, error) {
	switch vv := spec.(type) {
	case bool:
		return vv, nil
	case string:
		return vv == token, nil
	case func(string) interface{}:
		return vv(token), nil
	case []interface{}:
		for _, s := range vv {
			v, err := Match(s, token)
			if err != nil {
				return nil, err
			}
			if Matched(v) {
				return v, nil
			}
		}
		return false, nil
	default:
		if m, is := spec.(Matcher); is {
			return m.Match(token), nil
		}
		return nil, &CannotMatch{spec}
	}
}

// Matched reports whether a Match result counts as a match: anything
// but nil and false does.
func Matched(v interface{}) bool {
	return v != nil && v != false
}

// ExpectMatch is Match for callers who insist: a non-match is an
// error with consistent text.
func ExpectMatch(spec interface{}, token string) (interface{}, error) {
	v, err := Match(spec, token)
	if err != nil {
		return nil, err
	}
	if !Matched(v) {
		return nil, fmt.Errorf(`expected "%s" but got "%s"`, Stringify(spec), token)
	}
	return v, nil
}

// Regexp adapts a *regexp.Regexp to a Matcher.
//
// The match value is the submatch slice (so the whole match is at
// index 0), or nil when the expression doesn't match.
type Regexp struct {
	*regexp.Regexp
}

// Rx compiles the expression into a spec.  Panics on a bad
// expression, so only use this with literal patterns.
func Rx(expr string) Regexp {
	return Regexp{regexp.MustCompile(expr)}
}

func (r Regexp) Match(token string) interface{} {
	ss := r.FindStringSubmatch(token)
	if ss == nil {
		return nil
	}
	return ss
}

// Stringify renders a spec for use in error messages.
func Stringify(spec interface{}) string {
	switch vv := spec.(type) {
	case string:
		return vv
	case bool:
		return fmt.Sprintf("%v", vv)
	case Regexp:
		return vv.String()
	case []interface{}:
		acc := ""
		for i, s := range vv {
			if 0 < i {
				acc += "|"
			}
			acc += Stringify(s)
		}
		return acc
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprintf("%T", spec)
	}
}

// CannotMatch is an error that includes the spec that's causing the
// trouble.
type CannotMatch struct {
	Spec interface{}
}

func (e *CannotMatch) Error() string {
	return fmt.Sprintf("cannot match against %T (%#v)", e.Spec, e.Spec)
}
