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
	"fmt"
	"html"
	"io"
	"strings"

	. "github.com/Comcast/palaver/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderSessionHTML writes a Session as HTML, with Doc strings
// rendered as markdown.  Handy for sharing what a provisioning
// session actually does.
func RenderSessionHTML(s *Session, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="sessionDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	f(`<div class="steps"><table>`)
	for i, step := range s.Steps {
		f(`<tr class="step"><td><div class="stepNum">%d</div></td><td>`, i)
		f(`<table>`)
		if step.Doc != "" {
			f(`<tr><td></td><td colspan="2"><div class="stepDoc doc">%s</div></td></tr>`,
				md.Run([]byte(step.Doc)))
		}
		if step.Send != "" {
			f(`<tr><td></td><td>send</td><td><code>%s</code></td></tr>`,
				html.EscapeString(step.Send))
		}
		if step.Expect != nil {
			f(`<tr><td></td><td>expect</td><td><code>%s</code></td></tr>`,
				html.EscapeString(JS(step.Expect)))
		}
		if 0 < len(step.Flags) {
			f(`<tr><td></td><td>flags</td><td><code>%s</code></td></tr>`,
				strings.Join(step.Flags, "|"))
		}
		if 0 < step.Wait {
			f(`<tr><td></td><td>wait</td><td><code>%s</code></td></tr>`, step.Wait)
		}
		if 0 < step.Timeout {
			f(`<tr><td></td><td>timeout</td><td><code>%s</code></td></tr>`, step.Timeout)
		}
		if step.Guard != "" {
			f(`<tr><td></td><td>guard</td><td><div class="code"><pre>%s</pre></div></td></tr>`,
				html.EscapeString(step.Guard))
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}
