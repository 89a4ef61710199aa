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

// Package goja compiles ECMAScript sources into token predicates and
// guards for session scripts, using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
package goja

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

// Interpreter compiles and runs small scripts.
//
// A predicate source sees the token at _.token and "returns" its
// match value: anything but null, undefined, and false is a match,
// and the value is kept as the match payload.  A guard source sees a
// step's completion data at _.data and fails the step unless it
// produces something truthy.
type Interpreter struct {
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// env builds the runtime environment available at _.
//
// The following utilities are available:
//
//	cronNext(expr): the next time for the given cron expression,
//	  as an RFC3339Nano string.
//	esc(s): URL query-escape the given string.
func (i *Interpreter) env(o *goja.Runtime) map[string]interface{} {
	env := map[string]interface{}{}

	env["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		s, is := x.(string)
		if !is {
			protest(o, "not a string")
		}
		return url.QueryEscape(s)
	}

	return env
}

func (i *Interpreter) compile(src string) (*goja.Program, error) {
	p, err := goja.Compile("", wrapSrc(src), true)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", err, src)
	}
	return p, nil
}

// run executes the compiled program with the given extra environment
// and exports the result.
func (i *Interpreter) run(p *goja.Program, extra map[string]interface{}) (interface{}, error) {
	o := goja.New()
	env := i.env(o)
	for k, v := range extra {
		env[k] = v
	}
	o.Set("_", env)

	v, err := o.RunProgram(p)
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

// Predicate compiles a source into a match predicate.
//
//	p, err := i.Predicate(`
//	  var m = /^\+CSQ: (\d+)/.exec(_.token);
//	  return m && m[1];`)
func (i *Interpreter) Predicate(src string) (func(string) interface{}, error) {
	p, err := i.compile(src)
	if err != nil {
		return nil, err
	}
	return func(token string) interface{} {
		v, err := i.run(p, map[string]interface{}{
			"token": token,
		})
		if err != nil {
			// A predicate that blows up didn't match.
			return nil
		}
		return v
	}, nil
}

// Guard compiles a source into a guard over a step's completion
// data.
func (i *Interpreter) Guard(src string) (func(interface{}) error, error) {
	p, err := i.compile(src)
	if err != nil {
		return nil, err
	}
	return func(data interface{}) error {
		v, err := i.run(p, map[string]interface{}{
			"data": data,
		})
		if err != nil {
			return err
		}
		if !goja.New().ToValue(v).ToBoolean() {
			return fmt.Errorf("guard failed on %#v", data)
		}
		return nil
	}, nil
}
