package tap_test

import (
	"github.com/abdul-hamid-achik/arduinotap/packages/stream"
	"github.com/abdul-hamid-achik/arduinotap/packages/tap"
)

func Example() {
	r := tap.New(
		tap.WithOutput(stream.Stdout()),
		tap.WithFailureOutput(stream.NewBuffer()),
	)

	r.Plan(5)
	r.Ok(true, "boot")
	r.Is(21+21, 42, "answer")
	r.Todo("PWM driver unfinished", 1)
	r.Is(255, 255, "duty cycle")
	r.Skip("no servo attached", 1)
	r.Diag("heap free: 1337")
	r.TodoSkip("needs rev B board")
	r.DoneTesting()

	// Output:
	// 1..5
	// ok 1 - boot
	// ok 2 - answer
	// ok 3 - duty cycle # TODO PWM driver unfinished
	// ok 4 # skip no servo attached
	// # heap free: 1337
	// not ok 5 # TODO & SKIP needs rev B board
}
