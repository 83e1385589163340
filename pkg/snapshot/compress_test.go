package snapshot

import (
	"bytes"
	"io"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	w, err := newFrameWriter(&buf, lz4.Level5)
	require.NoError(t, err)

	_, err = w.Write([]byte("modules: []\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := io.ReadAll(newFrameReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, "modules: []\n", string(data))
}

func TestFrameWriter_InvalidLevel(t *testing.T) {
	t.Parallel()

	w, err := newFrameWriter(io.Discard, lz4.CompressionLevel(3))
	require.Error(t, err)
	assert.Nil(t, w)
}
