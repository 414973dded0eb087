// Package realtime drives fsmx machines from a fixed-rate tick loop.
//
// A Runner calls Update on each of its targets once per tick, in the order they
// were added. fsmx machines do no locking of their own, so anything that changes
// a definition while the loop runs goes through Runner.Edit, which excludes
// ticks, and read-only inspection goes through Runner.View.
//
// # Example Usage
//
//	rn := realtime.NewRunner(realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	}, machine)
//	rn.Start(ctx)
//	defer rn.Stop()
//
//	rn.Edit(func() error {
//		_, err := machine.AddLink(a, b, nil)
//		return err
//	})
//
// Ticks are deterministic: given the same definitions and callbacks, the n-th
// tick produces the same transitions whether it was driven by the loop or by a
// direct call to Tick.
package realtime
