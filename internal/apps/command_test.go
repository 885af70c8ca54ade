package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_ForwardAndBackwardAreInverses(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for c := 0; c < n; c++ {
			assert.Equal(t, c, Step(Step(c, n, Backward), n, Forward), "n=%d c=%d", n, c)
			assert.Equal(t, c, Step(Step(c, n, Forward), n, Backward), "n=%d c=%d", n, c)
		}
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		c, n int
		cmd  Command
		want int
	}{
		{0, 5, Forward, 1},
		{4, 5, Forward, 0},
		{0, 5, Backward, 4},
		{3, 5, Hold, 3},
		{3, 5, Tick, 3},
		{7, 5, Hold, 2},
		{-1, 5, Hold, 4},
		{3, 0, Forward, 0},
		{0, 1, Backward, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Step(tt.c, tt.n, tt.cmd), "Step(%d, %d, %v)", tt.c, tt.n, tt.cmd)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "forward", Forward.String())
	assert.Equal(t, "tick", Tick.String())
	assert.Equal(t, "unknown", Command(42).String())
	assert.True(t, Backward.Advances())
	assert.False(t, Resync.Advances())
}
