package launcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextAction(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Action
	}{
		{name: "clean shutdown", code: 0, want: ActionStop},
		{name: "restart request", code: 26, want: ActionRestart},
		{name: "crash", code: 1, want: ActionBackoff},
		{name: "panic exit", code: 2, want: ActionBackoff},
		{name: "killed", code: -1, want: ActionBackoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAction(tt.code))
		})
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(1))
	assert.Equal(t, 2*time.Second, Backoff(2))
	assert.Equal(t, 8*time.Second, Backoff(4))
	assert.Equal(t, maxBackoff, Backoff(10))
	assert.Equal(t, maxBackoff, Backoff(100))
}
