package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// catchable lists the signals the top-level loop forwards into the
// trap table (spec.md §5's concurrency model names os/signal as the
// ambient delivery mechanism the teacher never needed, since it ran no
// child processes). KILL and STOP are deliberately absent: neither can
// be caught.
var catchable = map[os.Signal]string{
	syscall.SIGHUP:  "HUP",
	syscall.SIGINT:  "INT",
	syscall.SIGQUIT: "QUIT",
	syscall.SIGTERM: "TERM",
	syscall.SIGUSR1: "USR1",
	syscall.SIGUSR2: "USR2",
}

// installSignalForwarding starts a goroutine that raises the matching
// trap-table entry for every caught signal, leaving the actual firing to
// the next safe point between commands (spec.md §5's deferred-trap
// model, already implemented by Interp.firePendingTraps). The returned
// func stops forwarding and must be called once the loop exits.
func (sh *Shell) installSignalForwarding() func() {
	sigCh := make(chan os.Signal, 8)
	sigs := make([]os.Signal, 0, len(catchable))
	for s := range catchable {
		sigs = append(sigs, s)
	}
	signal.Notify(sigCh, sigs...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case s := <-sigCh:
				name, ok := catchable[s]
				if !ok {
					continue
				}
				if _, trapped := sh.it.Env.Traps.Action(name); trapped {
					sh.it.Env.Traps.Raise(name)
					continue
				}
				// No trap installed: reassert the default disposition and
				// re-deliver to terminate the way an unhandled signal
				// normally would, rather than silently swallowing it.
				signal.Reset(s)
				syscall.Kill(syscall.Getpid(), s.(syscall.Signal))
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
