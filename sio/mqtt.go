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
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT is a Couplings that carries a conversation over broker topics:
// the partner's bytes arrive on SubTopic and outbound tokens are
// published to PubTopic.
//
// Payloads go through a LineTokenizer, so a payload can carry
// anything from a fragment of a line to several lines.
type MQTT struct {
	// Client should be configured but not connected; Start
	// connects it.
	Client mqtt.Client

	// SubTopic is the topic (optionally TOPIC:QOS) that carries
	// the partner's output.
	SubTopic string

	// PubTopic is the topic (optionally TOPIC:QOS) for outbound
	// tokens.
	PubTopic string

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	// InTimeout bounds queueing of an inbound token.
	InTimeout time.Duration

	in  chan string
	out chan string
	tok *LineTokenizer
}

// Start connects to the broker and subscribes.
func (c *MQTT) Start(ctx context.Context) error {
	c.in = make(chan string)
	c.out = make(chan string)

	c.tok = NewLineTokenizer(func(token string) {
		to := time.NewTimer(c.timeout())
		select {
		case <-ctx.Done():
		case c.in <- token:
		case <-to.C:
			log.Printf("MQTT dropping %q due to stall", token)
		}
		to.Stop()
	})

	log.Printf("Attempting to connect to broker")
	if t := c.Client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	log.Printf("Connected to broker")

	topic, qos := parseTopic(c.SubTopic)
	if t := c.Client.Subscribe(topic, qos, func(client mqtt.Client, msg mqtt.Message) {
		c.tok.Write(msg.Payload())
	}); t.Wait() && t.Error() != nil {
		return t.Error()
	}
	log.Printf("Subscribed to %s (%d)", topic, qos)

	go c.outLoop(ctx)

	return nil
}

func (c *MQTT) timeout() time.Duration {
	if c.InTimeout <= 0 {
		return 5 * time.Second
	}
	return c.InTimeout
}

// IO just returns the channels that Start() initialized.
func (c *MQTT) IO(ctx context.Context) (chan string, chan string, error) {
	return c.in, c.out, nil
}

// outLoop publishes outbound tokens to the broker.
func (c *MQTT) outLoop(ctx context.Context) {
	topic, qos := parseTopic(c.PubTopic)
	for {
		select {
		case <-ctx.Done():
			return
		case token, ok := <-c.out:
			if !ok {
				return
			}
			t := c.Client.Publish(topic, qos, false, []byte(token+"\r\n"))
			t.Wait()
			if t.Error() != nil {
				log.Printf("MQTT publish error: %s", t.Error())
			}
		}
	}
}

// Stop terminates the MQTT session.
func (c *MQTT) Stop(ctx context.Context) error {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Quiesce)
	return nil
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	var topic string
	var qos byte
	if _, err := fmt.Sscanf(strings.Replace(s, ":", " ", 1), "%s %d", &topic, &qos); err == nil {
		return topic, qos
	}
	return s, 0
}
