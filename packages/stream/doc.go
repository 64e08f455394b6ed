// Package stream provides the text sinks a TAP reporter writes to.
//
// A Stream is the whole capability the reporter needs: write some text and
// flush it. The embedding environment picks the transport:
//   - Writer: host fallback over any io.Writer (os.Stdout by default)
//   - Buffer: in-memory sink for tests
//   - Serial: an io.Writer throttled to a UART baud rate
//   - Multi: tee to several sinks
//   - Colorize: colours TAP lines for a terminal
//
// Print, Println and Format turn the value kinds a firmware test usually
// prints (text, characters, integers, floating point) into text.
package stream
