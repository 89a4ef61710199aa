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
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Stdio is a fairly simple Couplings that plays the partner on
// stdin/stdout: lines you type are what the partner says, and
// outbound tokens are printed.  Mostly useful for demos and tests.
type Stdio struct {
	// In is coupled to the conversation's inbound tokens.
	In io.Reader

	// Out is coupled to the conversation's outbound tokens.
	Out io.Writer

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// Tags prefixes tags indicating the direction ("send",
	// "heard").
	Tags bool

	// EchoInput writes input lines to the output (tagged "heard"
	// when Tags is set).
	EchoInput bool

	// InputEOF will be closed on EOF from stdin.
	InputEOF chan bool

	in  chan string
	out chan string

	// WG counts the IO loops.
	WG sync.WaitGroup
}

// NewStdio creates a new Stdio on os.Stdin and os.Stdout.
func NewStdio() *Stdio {
	return &Stdio{
		In:       os.Stdin,
		Out:      os.Stdout,
		InputEOF: make(chan bool),
	}
}

// Start does nothing.
func (s *Stdio) Start(ctx context.Context) error {
	return nil
}

// Stop waits until IO is complete.
func (s *Stdio) Stop(ctx context.Context) error {
	s.WG.Wait()
	return nil
}

func (s *Stdio) printf(tag, format string, args ...interface{}) {
	if s.Tags {
		format = fmt.Sprintf("% 6s ", tag) + format
	}
	if s.Timestamps {
		ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
		format = ts + " " + format
	}
	fmt.Fprintf(s.Out, format, args...)
}

// IO returns channels for reading from stdin and writing to stdout.
//
// Input lines that are empty or start with '#' are dropped, and a
// line of "quit" (or EOF) closes InputEOF.
func (s *Stdio) IO(ctx context.Context) (chan string, chan string, error) {
	s.in = make(chan string)
	s.out = make(chan string)

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		stdin := bufio.NewReader(s.In)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			line, err := stdin.ReadString('\n')
			if err == io.EOF || strings.TrimSpace(line) == "quit" {
				close(s.InputEOF)
				return
			}
			if err != nil {
				log.Printf("stdin error %s", err)
				return
			}
			if s.EchoInput {
				s.printf("heard", "%s", line)
			}
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case s.in <- line:
			}
		}
	}()

	s.WG.Add(1)
	go func() {
		defer s.WG.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case token, ok := <-s.out:
				if !ok {
					return
				}
				s.printf("send", "%s\n", token)
			}
		}
	}()

	return s.in, s.out, nil
}
