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
	"fmt"

	"github.com/Comcast/palaver/match"
)

// Example carries on a tiny modem dialogue: one unsolicited RING
// arrives in the middle of a signal-quality query.
func Example() {

	c := NewConversation(func(token string) error {
		fmt.Printf("> %s\n", token)
		return nil
	})

	c.Register(match.Rx("^RING"), false, func(token string) bool {
		fmt.Println("ring!")
		return true
	})

	c.Cmd("AT+CSQ", 0,
		MustExpect(
			[]interface{}{match.Rx(`^\+CSQ: (\d+)`), "OK"},
			UseMatchResult,
			0),
		func(err error, data interface{}) {
			if err != nil {
				fmt.Println("error:", err)
				return
			}
			fmt.Printf("signal %s\n", data.([]string)[1])
		})

	// What the partner says, token by token.
	c.Feed("RING")
	c.Feed("+CSQ: 23,99")
	c.Feed("OK")

	// Output:
	// > AT+CSQ
	// ring!
	// signal 23
}
