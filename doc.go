// Package palaver provides machinery for token-at-a-time
// conversations with AT-style partners.
//
// The core code is in package 'core', transports are in 'sio', and
// some command-line tools are in `cmd`.
//
// See https://github.com/Comcast/palaver/blob/master/README.md for more.
package palaver
