package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender_CodeOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf).Level(zerolog.InfoLevel))

	require.NoError(t, sender.Send(context.Background(), "9876543210", "424242"))
	assert.Contains(t, buf.String(), "******3210")
	assert.NotContains(t, buf.String(), "424242")
	assert.NotContains(t, buf.String(), "9876543210")

	buf.Reset()
	sender = NewLogSender(zerolog.New(&buf).Level(zerolog.DebugLevel))
	require.NoError(t, sender.Send(context.Background(), "9876543210", "424242"))
	assert.Contains(t, buf.String(), "424242")
}
