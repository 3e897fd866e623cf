package backend

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func expectToRead(t *testing.T, reader io.Reader, expected string) {
	t.Helper()
	var scratch [1024]byte
	n, err := reader.Read(scratch[:])
	require.NoError(t, err)
	require.Equal(t, expected, string(scratch[:n]))
}

func expectReadEOF(t *testing.T, reader io.Reader) {
	t.Helper()
	var scratch [1024]byte
	n, err := reader.Read(scratch[:])
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n, "read %q", scratch[:n])
}

func TestLineReader(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("timestamp,a\n")
	buf.WriteString("1,2\n")
	l := NewLineReader(buf)
	expectToRead(t, l, "timestamp,a\n")
	expectToRead(t, l, "1,2\n")
	buf.WriteString("2,")
	expectReadEOF(t, l)
	buf.WriteString("3\n")
	expectToRead(t, l, "2,3\n")
	buf.WriteString("3")
	expectReadEOF(t, l)
	buf.WriteString(",4")
	expectReadEOF(t, l)
	buf.WriteString("0\n4,")
	expectToRead(t, l, "3,40\n")
}

func TestFlushingLineReader(t *testing.T) {
	l := newFlushingLineReader(bytes.NewBufferString("1,2\n3,4"))
	expectToRead(t, l, "1,2\n")
	expectToRead(t, l, "3,4")
	expectReadEOF(t, l)
}
