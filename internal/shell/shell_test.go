package shell

import (
	"bytes"
	"io"
	"testing"
)

func TestCopyAndCloseForwardsAndCloses(t *testing.T) {
	src := bytes.NewBufferString("hello shell")
	var dst closableBuffer

	copyAndClose(&dst, src, "test")

	if dst.String() != "hello shell" {
		t.Fatalf("expected forwarded bytes, got %q", dst.String())
	}
	if !dst.closed {
		t.Fatalf("expected destination to be closed once copy finished")
	}
}

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (c *closableBuffer) Close() error {
	c.closed = true
	return nil
}

var _ io.WriteCloser = (*closableBuffer)(nil)
