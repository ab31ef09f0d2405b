package cleanup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{name: "small request", count: 1, want: 1},
		{name: "mid request", count: 50, want: 50},
		{name: "largest that fits with the command", count: 99, want: 99},
		{name: "full batch would overflow", count: 100, want: 99},
		{name: "huge request", count: 5000, want: 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampCount(tt.count)
			assert.Equal(t, tt.want, got)
			// the matched messages plus the invoking message must fit in
			// one bulk delete call
			assert.LessOrEqual(t, got+1, bulkDeleteLimit)
		})
	}
}
