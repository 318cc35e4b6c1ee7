package gdbindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGdbHash(t *testing.T) {
	require.Equal(t, uint32(0), gdbHash(""), "empty name hashes to zero")

	// Uppercase letters fold to lowercase before hashing.
	require.Equal(t, gdbHash("foo"), gdbHash("Foo"))
	require.Equal(t, gdbHash("operator=="), gdbHash("OPERATOR=="))

	// Stable across calls.
	require.Equal(t, gdbHash("std::vector<int>"), gdbHash("std::vector<int>"))

	// Distinct names should not trivially collide.
	require.NotEqual(t, gdbHash("foo"), gdbHash("bar"))
}

func TestGdbHashNonLetters(t *testing.T) {
	// Only A-Z folds; digits, punctuation and bytes above 'Z' pass through.
	require.NotEqual(t, gdbHash("_foo"), gdbHash("?foo"))
	require.Equal(t, gdbHash("x1"), gdbHash("X1"))
}
