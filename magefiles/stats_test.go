// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_test.go"), []byte("package a\n"), 0o644))

	n, err := sumLines(dir, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = sumLines(dir, "a.go,,a_test.go")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = sumLines(dir, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = sumLines(dir, "missing.go")
	assert.Error(t, err)
}

func TestMarkdownWords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Title\n\nthree more  words\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not counted"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "deep.md"), []byte("nested words"), 0o644))

	n, err := markdownWords(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
