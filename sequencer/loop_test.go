package sequencer

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoopRunsImmediatelyThenEveryInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var runs []time.Time
		start := time.Now()

		l := StartLoop(time.Second, func(at time.Time) bool {
			runs = append(runs, at)
			return len(runs) < 4
		})
		<-l.Done()

		assert.Equal(t, []time.Time{
			start,
			start.Add(time.Second),
			start.Add(2 * time.Second),
			start.Add(3 * time.Second),
		}, runs)
	})
}

func TestLoopCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var runs atomic.Int32
		l := StartLoop(time.Second, func(time.Time) bool {
			runs.Add(1)
			return true
		})

		time.Sleep(2500 * time.Millisecond)
		l.Cancel()
		l.Cancel()
		<-l.Done()

		assert.Equal(t, int32(3), runs.Load())
	})
}

func TestLoopCancelledBeforeFirstRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var runs atomic.Int32
		l := StartLoop(time.Second, func(time.Time) bool {
			runs.Add(1)
			return true
		})
		l.Cancel()
		<-l.Done()

		assert.LessOrEqual(t, runs.Load(), int32(1))
	})
}
