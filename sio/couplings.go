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
	"context"

	"github.com/Comcast/palaver/core"
)

// Couplings carry tokens between a Conversation and some transport.
//
// For example, an implementation could couple a conversation to a
// serial port, an MQTT broker, or a WebSocket server.
type Couplings interface {
	// Start initializes the Couplings.
	Start(context.Context) error

	// IO returns the channels: in carries tokens the partner
	// said; out carries tokens to say to the partner.
	IO(context.Context) (in chan string, out chan string, err error)

	// Stop shuts down the Couplings.
	Stop(context.Context) error
}

// Couple makes a Conversation wired to the given (Started) Couplings
// and starts pumping inbound tokens into it.
//
// The returned Conversation writes by queueing on the out channel
// (and reports the context's error if the context is done instead).
func Couple(ctx context.Context, cs Couplings) (*core.Conversation, error) {
	in, out, err := cs.IO(ctx)
	if err != nil {
		return nil, err
	}

	c := core.NewConversation(func(token string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- token:
			return nil
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case token, ok := <-in:
				if !ok {
					return
				}
				c.Feed(token)
			}
		}
	}()

	return c, nil
}
