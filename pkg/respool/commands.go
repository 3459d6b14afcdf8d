package respool

import "time"

// Commands are the only way anything outside loop() influences pool
// state. Each carries whatever reply channel its sender needs; loop()
// never blocks replying because every reply is either a single send on a
// channel buffered to hold one value or a close of the channel.
type (
	cmdAcquire struct {
		w *waiter
	}

	cmdRelease struct {
		handle any
		errCh  chan error
	}

	cmdDestroy struct {
		handle any
		errCh  chan error
	}

	cmdDrainStart struct {
		ack chan struct{}
	}

	cmdDestroyAllNow struct {
		done chan struct{}
	}

	cmdCreateDone struct {
		handle any
		err    error
	}

	cmdValidateDone struct {
		handle    any
		valid     bool
		expiresAt time.Time
	}

	cmdWaiterTimeout struct {
		id uint64
	}

	cmdCancelWaiter struct {
		id uint64
	}

	cmdReapTick struct{}
)
