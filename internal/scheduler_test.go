package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatch(t *testing.T) {
	t.Run("empty directory is not an error", func(t *testing.T) {
		assert.NoError(t, RunBatch(t.TempDir(), t.TempDir(), 1, brightenRecipe()))
	})

	t.Run("duplicate output names", func(t *testing.T) {
		inDir := t.TempDir()
		outDir := t.TempDir()
		writeImage(t, filepath.Join(inDir, "a.png"), 0.1)
		writeImage(t, filepath.Join(inDir, "a.bmp"), 0.4)

		assert.ErrorIs(t, RunBatch(inDir, outDir, 2, brightenRecipe()), ErrDuplicateImage)
		_, err := os.Stat(filepath.Join(outDir, "brightened"))
		assert.True(t, os.IsNotExist(err), "nothing written")
	})

	t.Run("joins per-file errors", func(t *testing.T) {
		inDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(inDir, "bad.png"), []byte("junk"), 0644))
		assert.Error(t, RunBatch(inDir, t.TempDir(), 1, brightenRecipe()))
	})
}

func TestNewScheduler(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeImage(t, filepath.Join(inDir, "a.png"), 0.2)

	sched, err := NewScheduler(inDir, outDir, 1, brightenRecipe(), 20*time.Millisecond)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, sched.Shutdown())
	}()

	_, err = os.Stat(filepath.Join(outDir, "brightened", "a.png"))
	require.NoError(t, err, "initial run happens before returning")

	staged := filepath.Join(t.TempDir(), "b.png")
	writeImage(t, staged, 0.3)
	require.NoError(t, os.Rename(staged, filepath.Join(inDir, "b.png")))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(outDir, "brightened", "b.png"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewScheduler_InitialRunFails(t *testing.T) {
	_, err := NewScheduler(filepath.Join(t.TempDir(), "missing"), t.TempDir(), 1, brightenRecipe(), time.Minute)
	assert.Error(t, err)
}
