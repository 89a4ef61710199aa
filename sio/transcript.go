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
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Transcript is an append-only log of what was said, kept in a Bolt
// file with one bucket per session.  Strictly a diagnostic facility:
// the engine itself persists nothing.
type Transcript struct {
	Debug bool

	filename string
	db       *bolt.DB
}

// Entry is one line of a Transcript.
type Entry struct {
	// Dir is "send" or "heard".
	Dir string `json:"dir"`

	Token string `json:"token"`

	At time.Time `json:"at"`
}

// NewTranscript makes a Transcript that will live in the given file.
// Call Open before use.
func NewTranscript(filename string) *Transcript {
	return &Transcript{
		filename: filename,
	}
}

func (t *Transcript) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(t.filename, 0644, opts)
	if err != nil {
		return err
	}
	t.db = db
	return nil
}

func (t *Transcript) Close() error {
	return t.db.Close()
}

func (t *Transcript) logf(format string, args ...interface{}) {
	if t.Debug {
		log.Printf("Transcript."+format, args...)
	}
}

// Record appends one entry to the session's bucket.
func (t *Transcript) Record(session string, e Entry) error {
	t.logf("Record %s %s %q", session, e.Dir, e.Token)
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	js, err := json.Marshal(&e)
	if err != nil {
		return err
	}
	return t.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(session))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, js)
	})
}

// Read returns a session's entries in order.
func (t *Transcript) Read(session string) ([]Entry, error) {
	es := make([]Entry, 0, 32)
	err := t.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(session))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			es = append(es, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return es, nil
}

// Sessions lists the sessions in the file.
func (t *Transcript) Sessions() ([]string, error) {
	var ss []string
	err := t.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			ss = append(ss, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ss, nil
}
