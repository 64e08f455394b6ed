// Package tap reports test outcomes in the Test Anything Protocol.
//
// A Reporter holds the state of one test run (plan, counters, pending TODO
// and SKIP directives, bail out) and writes one TAP line per event to its
// primary Stream. Failure detail such as got/expected blocks goes to a
// second failure Stream. Both default to standard output and can be
// swapped at any time.
//
//	r := tap.New(tap.WithOutput(serial))
//	r.Plan(3)
//	r.Ok(sensor.Ready(), "sensor ready")
//	r.Is(sensor.Read(), 42, "reads calibration value")
//	r.Todo("firmware 1.2 fixes rounding", 1)
//	r.Is(adc.Volts(), 3.3)
//	r.DoneTesting()
//
// Nothing here returns an error or panics on misuse. Double plans, plan
// mismatches and assertions after the run ended are written out as TAP
// comments so that the harness on the other end of the line can judge
// them. A Reporter is meant for a single thread of test execution and is
// not safe for concurrent use.
package tap
