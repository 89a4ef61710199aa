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
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// HTTPPoll is a Couplings for partners behind an HTTP gateway (some
// serial-over-HTTP bridges work this way): outbound tokens are
// POSTed to the URL, and the partner's pending output is fetched by
// polling GETs.  The gateway's session rides on cookies, so the
// client carries a jar.
type HTTPPoll struct {
	// URL is the gateway endpoint.
	URL string

	// PollInterval is the gap between GETs.  Zero means one
	// second.
	PollInterval time.Duration

	// Client, if nil, is built with a fresh cookie jar.
	Client *http.Client

	in  chan string
	out chan string
	tok *LineTokenizer
}

// Start builds the client and starts the polling and posting loops.
func (c *HTTPPoll) Start(ctx context.Context) error {
	if c.Client == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return err
		}
		c.Client = &http.Client{Jar: jar}
	}

	c.in = make(chan string)
	c.out = make(chan string)

	c.tok = NewLineTokenizer(func(token string) {
		select {
		case <-ctx.Done():
		case c.in <- token:
		}
	})

	interval := c.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.poll(ctx); err != nil {
					log.Printf("httppoll GET error %s", err)
				}
			}
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
				if err := c.post(ctx, token); err != nil {
					log.Printf("httppoll POST error %s", err)
				}
			}
		}
	}()

	return nil
}

func (c *HTTPPoll) poll(ctx context.Context) error {
	req, err := http.NewRequest("GET", c.URL, nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if 0 < len(bs) {
		c.tok.Write(bs)
	}
	return nil
}

func (c *HTTPPoll) post(ctx context.Context, token string) error {
	req, err := http.NewRequest("POST", c.URL, strings.NewReader(token+"\r\n"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	resp, err := c.Client.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// IO just returns the channels that Start() initialized.
func (c *HTTPPoll) IO(ctx context.Context) (chan string, chan string, error) {
	return c.in, c.out, nil
}

// Stop does nothing: the loops die with their context.
func (c *HTTPPoll) Stop(ctx context.Context) error {
	return nil
}
