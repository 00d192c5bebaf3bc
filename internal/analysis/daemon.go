package analysis

import (
	"os"
	"os/signal"
	"syscall"
)

// Daemon drives repeated analysis runs under a binary semaphore, the Go
// analogue of the reference implementation's `_run_lock` bounded semaphore:
// SIGHUP requests a new run, coalescing any signals that arrive while a run
// is already pending (a full channel send is silently dropped, exactly like
// Python's BoundedSemaphore.release() swallowing ValueError when already at
// its bound), and SIGTERM stops the loop.
type Daemon struct {
	run    func() error
	runCh  chan struct{}
	stopCh chan struct{}
}

// NewDaemon returns a Daemon that calls run once per requested iteration.
func NewDaemon(run func() error) *Daemon {
	return &Daemon{
		run:    run,
		runCh:  make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// RequestRun releases the semaphore, asking Serve to run once more. Safe to
// call concurrently, including from a signal handler goroutine.
func (d *Daemon) RequestRun() {
	select {
	case d.runCh <- struct{}{}:
	default:
	}
}

// Stop releases the loop, the RequestRun analogue for SIGTERM.
func (d *Daemon) Stop() {
	close(d.stopCh)
}

// Serve installs SIGHUP/SIGTERM handlers, runs once immediately (mirroring
// the reference implementation's main() acquiring the lock before entering
// its loop so the first pass always happens), then blocks rerunning on every
// subsequent SIGHUP until SIGTERM or a call to Stop.
func (d *Daemon) Serve() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				d.RequestRun()
			case syscall.SIGTERM:
				d.Stop()
				return
			}
		}
	}()

	d.RequestRun()
	for {
		select {
		case <-d.stopCh:
			return nil
		case <-d.runCh:
			if err := d.run(); err != nil {
				return err
			}
		}
	}
}
