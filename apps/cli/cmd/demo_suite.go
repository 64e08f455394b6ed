package cmd

import "github.com/abdul-hamid-achik/arduinotap/packages/tap"

type demoOptions struct {
	fail bool
	bail bool
}

// demoBoard stands in for an Uno-class board.
type demoBoard struct {
	firmware string
	led      bool
	adc      [6]int
	duty     int
}

func newDemoBoard() *demoBoard {
	return &demoBoard{
		firmware: "blink-1.4.2",
		adc:      [6]int{512, 341, 0, 0, 0, 0},
		duty:     127, // off by one until the PWM driver is calibrated
	}
}

func (b *demoBoard) boot() bool { return b.firmware != "" }
func (b *demoBoard) setLED(on bool) { b.led = on }
func (b *demoBoard) uartBusy() bool { return false }
func (b *demoBoard) analogRead(pin int) int { return b.adc[pin] }
func (b *demoBoard) i2cProbe(addr byte) bool { return false }

// runDemoSuite drives every kind of assertion and directive against the
// simulated board and reports whether the run passed.
func runDemoSuite(r *tap.Reporter, opts demoOptions) bool {
	b := newDemoBoard()

	r.Plan(10)
	r.Diag("firmware " + b.firmware)

	r.Ok(b.boot(), "board boots")
	b.setLED(true)
	r.Ok(b.led, "LED switches on")
	r.Nok(b.uartBusy(), "UART is idle")
	r.Is(b.analogRead(0), 512, "A0 reads mid-scale")
	r.Isnt(b.analogRead(1), 0, "A1 is wired")
	if opts.fail {
		r.Is(b.analogRead(2), 1023, "A2 is pulled high")
	} else {
		r.Pass("A2 left floating")
	}

	r.Todo("PWM driver not calibrated", 1)
	r.Is(b.duty, 128, "PWM duty cycle")

	r.SkipNext("no I2C display attached", 1)
	r.Ok(b.i2cProbe(0x3c), "I2C display acks")

	if opts.bail {
		r.BailOut("watchdog reset")
		return r.End()
	}

	r.Skip("no servo attached", 1)
	r.TodoSkip("needs rev B board")

	r.DoneTesting()
	return r.End()
}
