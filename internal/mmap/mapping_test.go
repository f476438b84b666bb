package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)

	data, err := m.Bytes()
	require.NoError(t, err)
	require.Len(t, data, 4096)
	assert.Equal(t, 4096, m.Size())

	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, b)
		}
	}

	data[0] = 0xAB
	data[4095] = 0xCD
	again, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), again[0])
	assert.Equal(t, byte(0xCD), again[4095])

	require.NoError(t, m.Close())
	closed, err := m.Bytes()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Nil(t, closed)

	// Idempotent.
	require.NoError(t, m.Close())
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
