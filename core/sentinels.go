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

// Sentinel is a unique opaque value with engine-level meaning.
// Sentinels are compared by identity, so no value user code could
// cook up collides with one.
type Sentinel struct {
	name string
}

func (s *Sentinel) String() string {
	return s.name
}

var (
	// Repeat, returned by a Receiver, asks to stay installed for
	// the next token.
	Repeat = &Sentinel{"repeat"}

	// WaitStop is the data delivered when a Wait expires
	// normally.
	WaitStop = &Sentinel{"waitStop"}
)
