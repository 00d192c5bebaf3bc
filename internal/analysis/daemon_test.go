package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestRunCoalescesRepeatedSignals(t *testing.T) {
	d := NewDaemon(func() error { return nil })
	d.RequestRun()
	d.RequestRun()
	d.RequestRun()

	assert.Len(t, d.runCh, 1, "a pending run must not queue up once per signal")
}

func TestStopClosesStopChannel(t *testing.T) {
	d := NewDaemon(func() error { return nil })
	d.Stop()

	select {
	case _, open := <-d.stopCh:
		assert.False(t, open)
	default:
		t.Fatal("stopCh should be closed and ready to receive")
	}
}
