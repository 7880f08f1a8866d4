package ingress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssignsRequestedPartition(t *testing.T) {
	r := New([]string{"localhost:9092"}, "commands", 3, func(context.Context, int, []byte) error { return nil })
	require.Equal(t, 3, r.partition)
	require.NoError(t, r.Close())
}
