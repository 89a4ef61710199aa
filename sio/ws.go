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
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

// WebSocket is a Couplings that talks to a partner behind a WebSocket
// server (say, a serial-over-WS bridge).  Message payloads go
// through a LineTokenizer.
type WebSocket struct {
	// URL is the target, something like "ws://gateway:8080/modem".
	URL string

	in   chan string
	out  chan string
	conn *websocket.Conn
	tok  *LineTokenizer
}

// Start creates the WebSocket session and starts processing it.
func (c *WebSocket) Start(ctx context.Context) error {

	u, err := url.Parse(c.URL)
	if err != nil {
		return err
	}

	c.in = make(chan string)
	c.out = make(chan string)

	c.tok = NewLineTokenizer(func(token string) {
		select {
		case <-ctx.Done():
		case c.in <- token:
		}
	})

	log.Println("wsconnect", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_, bs, err := conn.ReadMessage()
			if err != nil {
				log.Printf("ws ReadMessage error %s", err)
				close(c.in)
				return
			}
			if len(bs) == 0 {
				continue
			}
			c.tok.Write(bs)
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case token, ok := <-c.out:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(token+"\r\n")); err != nil {
					log.Printf("ws WriteMessage error %s", err)
					return
				}
			}
		}
	}()

	return nil
}

// IO just returns the channels that Start() initialized.
func (c *WebSocket) IO(ctx context.Context) (chan string, chan string, error) {
	return c.in, c.out, nil
}

// Stop terminates the WebSocket connection.
func (c *WebSocket) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	return c.conn.Close()
}
