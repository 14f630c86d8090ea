package sequencer

import (
	"sync"
	"time"
)

// Loop is a cancellable repeating task. The first run happens immediately,
// then once per interval until fn returns false or Cancel is called.
type Loop struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartLoop runs fn in its own goroutine and returns the handle that stops it
func StartLoop(interval time.Duration, fn func(at time.Time) bool) *Loop {
	l := &Loop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run(interval, fn)
	return l
}

func (l *Loop) run(interval time.Duration, fn func(time.Time) bool) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	at := time.Now()
	for {
		select {
		case <-l.stop:
			return
		default:
		}

		if !fn(at) {
			return
		}

		select {
		case <-l.stop:
			return
		case at = <-ticker.C:
		}
	}
}

// Cancel stops future runs. It does not wait for a run in progress; callers
// that share state with fn must check their own generation under a lock.
func (l *Loop) Cancel() {
	l.once.Do(func() { close(l.stop) })
}

// Done is closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
