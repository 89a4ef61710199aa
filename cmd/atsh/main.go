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

// Package main is an interactive shell for talking to an AT-style
// partner over MQTT, WebSocket, or HTTP polling.
//
// Lines you type are sent as commands; everything the partner says
// comes back on stdout.  Unsolicited lines are tagged.  A transcript
// can be recorded, named shortcuts can be loaded from a YAML profile,
// and a keep-alive (or any other command) can be scheduled on a cron
// expression.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Comcast/palaver/core"
	"github.com/Comcast/palaver/sio"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorhill/cronexpr"
	"gopkg.in/yaml.v2"
)

// Profile is a YAML file of named command shortcuts.
//
//	shortcuts:
//	  signal: AT+CSQ
//	  reg: AT+CREG?
type Profile struct {
	Shortcuts map[string]string `yaml:"shortcuts"`
}

func main() {

	var (
		transport = flag.String("transport", "mqtt", "Transport: mqtt, ws, or http")

		broker   = flag.String("h", "tcp://localhost:1883", "MQTT broker")
		clientId = flag.String("i", "atsh", "MQTT client id")
		subTopic = flag.String("sub", "modem/out", "MQTT topic carrying partner output")
		pubTopic = flag.String("pub", "modem/in", "MQTT topic for commands")

		wsURL = flag.String("url", "ws://localhost:8080/modem", "WebSocket URL")

		httpURL  = flag.String("http-url", "http://localhost:8080/modem", "HTTP gateway URL")
		httpPoll = flag.Duration("http-poll", time.Second, "HTTP poll interval")

		timeout         = flag.Duration("t", 10*time.Second, "command timeout")
		transcriptFile  = flag.String("transcript", "", "optional transcript (Bolt) filename")
		session         = flag.String("session", time.Now().UTC().Format(time.RFC3339), "transcript session name")
		profileFilename = flag.String("profile", "", "optional YAML profile of command shortcuts")
		initFile        = flag.String("init", "", "file of commands to send first")
		every           = flag.String("every", "", "scheduled command, as 'CRONEXPR|COMMAND'")
		verbose         = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cs sio.Couplings
	switch *transport {
	case "mqtt":
		opts := mqtt.NewClientOptions()
		opts.AddBroker(*broker)
		opts.SetClientID(*clientId)
		opts.SetPingTimeout(10 * time.Second)
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
			URL:          *httpURL,
			PollInterval: *httpPoll,
		}
	default:
		log.Fatalf("unknown transport '%s'", *transport)
	}

	if err := cs.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer cs.Stop(context.Background())

	var transcript *sio.Transcript
	if *transcriptFile != "" {
		transcript = sio.NewTranscript(*transcriptFile)
		if err := transcript.Open(); err != nil {
			log.Fatal(err)
		}
		defer transcript.Close()
	}

	record := func(dir, token string) {
		if transcript == nil {
			return
		}
		if err := transcript.Record(*session, sio.Entry{Dir: dir, Token: token}); err != nil {
			log.Printf("transcript error %s", err)
		}
	}

	in, out, err := cs.IO(ctx)
	if err != nil {
		log.Fatal(err)
	}

	c := core.NewConversation(func(token string) error {
		record("send", token)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- token:
			return nil
		}
	})
	c.Timeout = *timeout
	c.Verbose = *verbose

	c.OnUnhandled(func(err error, data interface{}) {
		if err != nil {
			fmt.Printf("! %s\n", err)
			return
		}
		fmt.Printf("* %s\n", data)
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
				record("heard", token)
				c.Feed(token)
			}
		}
	}()

	shortcuts := map[string]string{}
	if *profileFilename != "" {
		bs, err := ioutil.ReadFile(*profileFilename)
		if err != nil {
			log.Fatal(err)
		}
		var p Profile
		if err = yaml.Unmarshal(bs, &p); err != nil {
			log.Fatal(err)
		}
		shortcuts = p.Shortcuts
	}

	// send runs one command, waiting for its terminal token so the
	// shell stays usable for unsolicited traffic in between.
	send := func(command string) {
		if expanded, have := shortcuts[command]; have {
			command = expanded
		}
		done := make(chan bool)
		c.Cmd(command, 0, shellReceiver, func(err error, data interface{}) {
			if err != nil {
				fmt.Printf("! %s\n", err)
			} else if data != nil {
				fmt.Printf("< %s\n", data)
			}
			close(done)
		})
		select {
		case <-ctx.Done():
		case <-done:
		}
	}

	if *initFile != "" {
		bs, err := ioutil.ReadFile(*initFile)
		if err != nil {
			log.Fatal(err)
		}
		for _, line := range strings.Split(string(bs), "\n") {
			line, err = sio.ShellExpand(line) // ToDo: Warn/switch!
			if err != nil {
				log.Fatalf("shell expansion error %s", err)
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			send(line)
		}
	}

	if *every != "" {
		parts := strings.SplitN(*every, "|", 2)
		if len(parts) != 2 {
			log.Fatalf("bad -every '%s'", *every)
		}
		expr, err := cronexpr.Parse(parts[0])
		if err != nil {
			log.Fatalf("bad -every cron expression: %s", err)
		}
		command := strings.TrimSpace(parts[1])
		go func() {
			for {
				d := expr.Next(time.Now()).Sub(time.Now())
				select {
				case <-ctx.Done():
					return
				case <-time.After(d):
					// Forced: a keep-alive shouldn't care
					// what the shell is doing.
					if err := c.ForceSend(command); err != nil {
						log.Printf("scheduled send error %s", err)
					}
				}
			}
		}()
	}

	stdin := bufio.NewReader(os.Stdin)
	for {
		line, err := stdin.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" {
			break
		}
		send(line)
	}
}

// shellReceiver prints each line as it arrives and stays installed
// until a terminal token (OK, ERROR, +CME ERROR, +CMS ERROR), completing
// with that terminal token.
func shellReceiver(token string) (interface{}, error) {
	fmt.Printf("  %s\n", token)
	switch token {
	case "OK", "ERROR":
		return token, nil
	default:
		if strings.HasPrefix(token, "+CME ERROR") || strings.HasPrefix(token, "+CMS ERROR") {
			return token, nil
		}
		return core.Repeat, nil
	}
}
