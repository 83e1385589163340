package snapshot

import (
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// newFrameReader decompresses an LZ4 frame stream.
func newFrameReader(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}

// newFrameWriter compresses into an LZ4 frame. Close must be called to flush
// the frame footer; it does not close w.
func newFrameWriter(w io.Writer, level lz4.CompressionLevel) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)

	err := zw.Apply(lz4.CompressionLevelOption(level))
	if err != nil {
		return nil, fmt.Errorf("configure lz4 frame: %w", err)
	}

	return frameWriter{zw}, nil
}

type frameWriter struct {
	*lz4.Writer
}

func (fw frameWriter) Close() error {
	err := fw.Writer.Close()
	if err != nil {
		return fmt.Errorf("close lz4 frame: %w", err)
	}

	return nil
}
