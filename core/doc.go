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

// Package core provides the gear for carrying on a token-at-a-time
// conversation with a remote partner over a byte stream.  The
// prototypical partner is an AT-command modem on a serial line, but
// nothing here knows about serial lines (or modems).
//
// The primary type is Conversation.  A Conversation is fed
// pre-tokenized input from the partner (Feed) and writes outbound
// tokens through an injected writer (Send).  At most one operation --
// a Receive, a Cmd, or a Wait -- is in flight at a time; everything
// else the partner says is routed to registered handlers for
// unsolicited input (Register) or to an unhandled sink
// (OnUnhandled).
//
// A Receive installs a Receiver, which sees one token at a time and
// decides what happens next: return Repeat to stay installed, return
// another Receiver to take over, or return anything else to complete
// the operation with that value.  Expect compiles a declarative
// pattern (see package match) into such a Receiver, which covers most
// of what you'd otherwise write by hand.
//
// Seq drives a script of steps -- some synchronous, some
// asynchronous, some a Receive on the Conversation itself -- to
// completion, which is how multi-step dialogues ("configure, then
// query, then connect") are written.
//
// All user code -- Receivers, registered handlers, completion
// callbacks -- runs with the Conversation observably idle, so a
// handler can start the next operation synchronously.  The engine
// assumes one logical thread of control; an internal mutex merely
// serializes timer fires with feeds.
package core
