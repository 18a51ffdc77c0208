// Copyright 2026 The Detcore Authors
// This file is part of Detcore.

package logdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyWriteEraseRoundTrip checks spec.md §8 property #1/#2: any
// sequence of Write/Erase, flushed and reopened, reproduces exactly the
// final in-memory state, and re-flushing an already-clean database is a
// no-op.
func TestPropertyWriteEraseRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		path := filepath.Join(t.TempDir(), "prop.logdb")
		db := New()
		require.NoError(rt, db.Open(path, true, false))

		model := map[string][]byte{}
		keyGen := rapid.StringMatching(`[a-z]{1,8}`)
		valGen := rapid.SliceOfN(rapid.Byte(), 0, 16)

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(rt, "erase") && len(model) > 0 {
				k := rapid.SampledFrom(keysOf(model)).Draw(rt, "erase-key")
				require.NoError(rt, db.Erase([]byte(k)))
				delete(model, k)
				continue
			}
			k := keyGen.Draw(rt, "key")
			v := valGen.Draw(rt, "value")
			require.NoError(rt, db.Write([]byte(k), v, true))
			model[k] = v
		}
		require.NoError(rt, db.Flush())
		require.False(rt, db.IsDirty())

		require.NoError(rt, db.Flush()) // idempotent: clean dirty set, no I/O, no error
		require.NoError(rt, db.Close())

		reopened := New()
		require.NoError(rt, reopened.Open(path, false, false))
		defer reopened.Close()

		for k, v := range model {
			got, ok := reopened.Read([]byte(k))
			require.True(rt, ok, "missing key %q after reopen", k)
			require.Equal(rt, v, got)
		}

		count := 0
		for range reopened.Iterate() {
			count++
		}
		require.Equal(rt, len(model), count)
	})
}

// TestPropertyTornTailNeverCorruptsPriorFrames checks spec.md §8 property #5:
// truncating any prefix of the file that lands inside (or before) the last
// frame still lets Open succeed, recovering exactly the frames that were
// fully and correctly written before the truncation point.
func TestPropertyTornTailNeverCorruptsPriorFrames(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		path := filepath.Join(t.TempDir(), "torn.logdb")
		db := New()
		require.NoError(rt, db.Open(path, true, false))

		committed := map[string][]byte{}
		frameCount := rapid.IntRange(1, 8).Draw(rt, "frames")
		for i := 0; i < frameCount; i++ {
			k := rapid.StringMatching(`[a-z]{1,6}`).Draw(rt, "key")
			v := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(rt, "value")
			require.NoError(rt, db.Write([]byte(k), v, true))
			require.NoError(rt, db.Flush())
			committed[k] = v
		}
		goodSize, err := fileSize(path)
		require.NoError(rt, err)

		// append one more, possibly-torn frame
		require.NoError(rt, db.Write([]byte("trailing"), []byte("x"), true))
		require.NoError(rt, db.Flush())
		fullSize, err := fileSize(path)
		require.NoError(rt, err)
		require.NoError(rt, db.Close())

		cut := rapid.Int64Range(goodSize, fullSize).Draw(rt, "cut")
		require.NoError(rt, os.Truncate(path, cut))

		reopened := New()
		require.NoError(rt, reopened.Open(path, false, false))
		defer reopened.Close()

		for k, v := range committed {
			got, ok := reopened.Read([]byte(k))
			require.True(rt, ok)
			require.Equal(rt, v, got)
		}
	})
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
