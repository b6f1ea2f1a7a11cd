package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	r := NewLineReader(strings.NewReader("  1 \n+Food\nlast"))
	ctx := context.Background()

	for _, want := range []string{"1", "+Food", "last"} {
		line, err := r.ReadLine(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_KeepsLineAfterCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	r := NewLineReader(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)

	go func() { _, _ = io.WriteString(pw, "late\n") }()

	line, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", line)
}

func TestLineReader_ErrorIsSticky(t *testing.T) {
	r := NewLineReader(strings.NewReader(""))
	for i := 0; i < 2; i++ {
		_, err := r.ReadLine(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	}
}
