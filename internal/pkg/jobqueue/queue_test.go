package jobqueue

import (
	"testing"
)

func TestQueueRestart(t *testing.T) {
	q := NewQueue(1)

	// Two full start/stop cycles: the second cycle must run on a fresh stop
	// channel, otherwise its workers exit immediately and the second Stop
	// closes an already-closed channel.
	for cycle := 0; cycle < 2; cycle++ {
		q.Start()
		q.mu.Lock()
		running := q.running
		q.mu.Unlock()
		if !running {
			t.Fatalf("cycle %d: queue should be running after Start", cycle)
		}

		q.Stop()
		q.mu.Lock()
		running = q.running
		q.mu.Unlock()
		if running {
			t.Fatalf("cycle %d: queue should be stopped after Stop", cycle)
		}
	}
}

func TestQueueStartIsIdempotent(t *testing.T) {
	q := NewQueue(1)
	q.Start()
	q.Start()
	q.Stop()
	q.Stop()
}
