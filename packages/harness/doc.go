// Package harness reads a TAP stream back and judges it.
//
// It is the other end of the serial line: Parse takes a captured stream
// (a serial monitor log, a file, stdin) and returns a Summary with every
// result, its directive, the comments and YAML block that followed it,
// and the plan bookkeeping. A Parser can also be fed line by line while a
// board is still talking, in which case the gaps between results are
// recorded in a latency histogram.
package harness
