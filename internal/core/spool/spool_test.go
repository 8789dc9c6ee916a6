package spool_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perhapsishould/contract-processor/internal/core/spool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpool_StoreAndRelease(t *testing.T) {
	s, err := spool.New(t.TempDir())
	require.NoError(t, err)

	path, err := s.Store([]byte("%PDF-1.4 payload"), "contract.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 payload", string(data))
	assert.True(t, strings.HasSuffix(path, "-contract.pdf"))

	require.NoError(t, s.Release(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSpool_DoubleReleaseErrors(t *testing.T) {
	s, err := spool.New(t.TempDir())
	require.NoError(t, err)

	path, err := s.Store([]byte("x"), "a.pdf")
	require.NoError(t, err)

	require.NoError(t, s.Release(path))
	assert.Error(t, s.Release(path))
}

func TestSpool_SanitizesHint(t *testing.T) {
	dir := t.TempDir()
	s, err := spool.New(dir)
	require.NoError(t, err)

	path, err := s.Store([]byte("x"), "../../etc/pass wd?.pdf")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.NotContains(t, filepath.Base(path), "..")
	assert.NotContains(t, filepath.Base(path), " ")
}

func TestSpool_DistinctPathsForSameHint(t *testing.T) {
	s, err := spool.New(t.TempDir())
	require.NoError(t, err)

	a, err := s.Store([]byte("x"), "contract.pdf")
	require.NoError(t, err)
	b, err := s.Store([]byte("y"), "contract.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
