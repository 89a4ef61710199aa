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

// Package main runs a session script against a partner.
//
// A session script is YAML; see the tools package.  The partner is
// reached over MQTT, WebSocket, HTTP polling, or stdio (where you
// play the partner, which is handy for trying out a script).
package main

import (
	"context"
	"flag"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/Comcast/palaver/sio"
	"github.com/Comcast/palaver/tools"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {

	var (
		inputFilename = flag.String("f", "sessions/signal.yaml", "filename for the session script")
		timeout       = flag.Duration("t", time.Minute, "main timeout")
		renderHTML    = flag.Bool("html", false, "render the session as HTML and exit")
		verbose       = flag.Bool("v", false, "verbosity")

		transport = flag.String("transport", "stdio", "Transport: stdio, mqtt, ws, or http")

		broker   = flag.String("h", "tcp://localhost:1883", "MQTT broker")
		clientId = flag.String("i", "atexpect", "MQTT client id")
		subTopic = flag.String("sub", "modem/out", "MQTT topic carrying partner output")
		pubTopic = flag.String("pub", "modem/in", "MQTT topic for commands")

		wsURL = flag.String("url", "ws://localhost:8080/modem", "WebSocket URL")

		httpURL = flag.String("http-url", "http://localhost:8080/modem", "HTTP gateway URL")
	)

	flag.Parse()

	bs, err := ioutil.ReadFile(*inputFilename)
	if err != nil {
		log.Fatal(err)
	}

	s, err := tools.LoadSession(bs)
	if err != nil {
		log.Fatal(err)
	}
	s.Verbose = *verbose

	if *renderHTML {
		if err = tools.RenderSessionHTML(s, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var cs sio.Couplings
	switch *transport {
	case "stdio":
		cs = sio.NewStdio()
	case "mqtt":
		opts := mqtt.NewClientOptions()
		opts.AddBroker(*broker)
		opts.SetClientID(*clientId)
		cs = &sio.MQTT{
			Client:   mqtt.NewClient(opts),
			SubTopic: *subTopic,
			PubTopic: *pubTopic,
		}
	case "ws":
		cs = &sio.WebSocket{
			URL: *wsURL,
		}
	case "http":
		cs = &sio.HTTPPoll{
			URL: *httpURL,
		}
	default:
		log.Fatalf("unknown transport '%s'", *transport)
	}

	if err := cs.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer cs.Stop(context.Background())

	c, err := sio.Couple(ctx, cs)
	if err != nil {
		log.Fatal(err)
	}
	c.Verbose = *verbose

	if err := s.Run(ctx, c); err != nil {
		log.Fatal(err)
	}
	log.Println("session passed")
}
