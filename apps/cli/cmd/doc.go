// Package cmd implements the arduinotap CLI commands using Cobra.
//
// Available commands:
//   - check: Judge a captured TAP stream (file or stdin) and summarise it
//   - demo: Run a sample suite through the reporter on the host
//   - init: Write a default arduinotap.yaml
//   - completion: Generate shell completion scripts (Cobra default command)
//   - version: Show arduinotap version information
//
// check supports console, JSON, JUnit and normalized TAP output, strict
// plan checking, and a watch mode that re-checks a capture file whenever
// the serial monitor appends to it.
package cmd
