package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = "apod-log.json"

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeLog(t *testing.T, dir string, titles map[string]string) {
	t.Helper()
	data, err := json.Marshal(titles)
	require.NoError(t, err)
	writeFile(t, dir, testLog, string(data))
}

func readLog(t *testing.T, dir string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, testLog))
	require.NoError(t, err)
	var titles map[string]string
	require.NoError(t, json.Unmarshal(data, &titles))
	return titles
}

func dayName(i int) string {
	return fmt.Sprintf("apod_2026-01-%02d.jpg", i+1)
}

func TestReconcile_EmptyDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "apod")
	d := Open(root, testLog, 0, nil)

	entries, err := d.Reconcile()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, d.Dirty())
	assert.DirExists(t, root)
}

func TestReconcile_MatchingLogKeepsTitles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(1), "b")
	writeFile(t, root, dayName(0), "a")
	writeLog(t, root, map[string]string{dayName(0): "Moon", dayName(1): "Comet"})

	d := Open(root, testLog, 0, nil)
	entries, err := d.Reconcile()
	require.NoError(t, err)

	assert.Equal(t, []Entry{{dayName(0), "Moon"}, {dayName(1), "Comet"}}, entries)
	assert.False(t, d.Dirty())
}

func TestReconcile_LostLogRebuildsFromListing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(2), "c")
	writeFile(t, root, dayName(0), "a")

	d := Open(root, testLog, 0, nil)
	entries, err := d.Reconcile()
	require.NoError(t, err)

	assert.Equal(t, []Entry{{dayName(0), dayName(0)}, {dayName(2), dayName(2)}}, entries)
	assert.True(t, d.Dirty())

	require.NoError(t, d.Save())
	assert.Equal(t, map[string]string{dayName(0): dayName(0), dayName(2): dayName(2)}, readLog(t, root))
	assert.False(t, d.Dirty())
}

func TestReconcile_FileDeletedOutOfBand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(0), "a")
	writeLog(t, root, map[string]string{dayName(0): "Moon", dayName(1): "Gone"})

	d := Open(root, testLog, 0, nil)
	entries, err := d.Reconcile()
	require.NoError(t, err)

	assert.Equal(t, []Entry{{dayName(0), "Moon"}}, entries)
	assert.True(t, d.Dirty())
}

func TestReconcile_CorruptLogRebuilds(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(0), "a")
	writeFile(t, root, testLog, `{"apod_2026-01`)

	d := Open(root, testLog, 0, nil)
	entries, err := d.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{dayName(0), dayName(0)}}, entries)
	assert.True(t, d.Dirty())
}

func TestReconcile_RemovesStagingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(0), "a")
	writeFile(t, root, dayName(1)+stagingSuffix, "half")

	d := Open(root, testLog, 0, nil)
	entries, err := d.Reconcile()
	require.NoError(t, err)

	assert.Len(t, entries, 1)
	assert.NoFileExists(t, filepath.Join(root, dayName(1)+stagingSuffix))
}

func TestReconcile_Idempotent(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 4; i++ {
		writeFile(t, root, dayName(i), fmt.Sprint(i))
	}
	writeLog(t, root, map[string]string{dayName(0): "zero", dayName(3): "three"})

	d := Open(root, testLog, 0, nil)
	first, err := d.Reconcile()
	require.NoError(t, err)
	second, err := d.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.NoError(t, d.Save())
	third, err := d.Reconcile()
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.False(t, d.Dirty())
}

func TestEvictToBound_KeepsNewest(t *testing.T) {
	for _, total := range []int{0, 1, 5, 10, 11, 15, 30} {
		for _, maxFiles := range []int{1, 3, 10} {
			t.Run(fmt.Sprintf("total=%d/max=%d", total, maxFiles), func(t *testing.T) {
				root := t.TempDir()
				for i := 0; i < total; i++ {
					writeFile(t, root, dayName(i), fmt.Sprint(i))
				}
				d := Open(root, testLog, maxFiles, nil)
				before, err := d.Reconcile()
				require.NoError(t, err)

				evicted, err := d.EvictToBound(maxFiles)
				require.NoError(t, err)

				after := d.Entries()
				assert.LessOrEqual(t, len(after), maxFiles)
				if total <= maxFiles {
					assert.Empty(t, evicted)
					assert.Equal(t, before, after)
					return
				}
				assert.Equal(t, before[total-maxFiles:], after)
				for _, e := range evicted {
					assert.NoFileExists(t, filepath.Join(root, e.Name))
				}
				for _, e := range after {
					assert.FileExists(t, filepath.Join(root, e.Name))
				}
			})
		}
	}
}

func TestEvictToBound_MissingFileIsNoop(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 3; i++ {
		writeFile(t, root, dayName(i), fmt.Sprint(i))
	}
	d := Open(root, testLog, 2, nil)
	_, err := d.Reconcile()
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, dayName(0))))

	evicted, err := d.EvictToBound(2)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{dayName(0), dayName(0)}}, evicted)
	assert.Equal(t, 2, d.Len())
}

func TestAppend_EleventhEvictsOldest(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, root, dayName(i), fmt.Sprint(i))
	}
	d := Open(root, testLog, DefaultMaxFiles, nil)
	_, err := d.Reconcile()
	require.NoError(t, err)
	require.Equal(t, 10, d.Len())

	writeFile(t, root, dayName(10), "10")
	require.NoError(t, d.Append(dayName(10), "Eleventh"))

	assert.Equal(t, 10, d.Len())
	assert.Equal(t, -1, d.Index(dayName(0)))
	assert.NoFileExists(t, filepath.Join(root, dayName(0)))
	last, ok := d.At(9)
	require.True(t, ok)
	assert.Equal(t, Entry{dayName(10), "Eleventh"}, last)
}

func TestRemove_DropsEntryAndFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(0), "a")
	writeFile(t, root, dayName(1), "b")
	d := Open(root, testLog, 0, nil)
	_, err := d.Reconcile()
	require.NoError(t, err)

	require.NoError(t, d.Remove(dayName(0)))
	assert.Equal(t, []Entry{{dayName(1), dayName(1)}}, d.Entries())
	assert.NoFileExists(t, filepath.Join(root, dayName(0)))
}

func TestFindDuplicate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, dayName(0), "same bytes")
	writeFile(t, root, dayName(1), "other bytes")
	d := Open(root, testLog, 0, nil)
	_, err := d.Reconcile()
	require.NoError(t, err)

	candidates := t.TempDir()
	writeFile(t, candidates, "identical.jpg", "same bytes")
	writeFile(t, candidates, "onebyte.jpg", "same byteS")
	writeFile(t, candidates, "longer.jpg", "same bytes!")

	name, ok, err := d.FindDuplicate(filepath.Join(candidates, "identical.jpg"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dayName(0), name)

	for _, c := range []string{"onebyte.jpg", "longer.jpg"} {
		_, ok, err := d.FindDuplicate(filepath.Join(candidates, c))
		require.NoError(t, err)
		assert.False(t, ok, c)
	}

	// An entry is never its own duplicate.
	_, ok, err = d.FindDuplicate(d.FilePath(dayName(1)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecksum_LargerThanWindow(t *testing.T) {
	root := t.TempDir()
	big := make([]byte, 10*chunkSize+7)
	for i := range big {
		big[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), big, 0o644))
	big[len(big)-1]++
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), big, 0o644))

	a, err := Checksum(filepath.Join(root, "a"))
	require.NoError(t, err)
	b, err := Checksum(filepath.Join(root, "b"))
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestStage_CommitAndDiscard(t *testing.T) {
	root := t.TempDir()
	d := Open(root, testLog, 0, nil)

	s, err := d.Stage(dayName(0))
	require.NoError(t, err)
	_, err = s.Write([]byte("payload"))
	require.NoError(t, err)
	assert.NoFileExists(t, d.FilePath(dayName(0)))
	require.NoError(t, s.Commit())
	assert.FileExists(t, d.FilePath(dayName(0)))
	assert.NoFileExists(t, s.Path())

	s2, err := d.Stage(dayName(1))
	require.NoError(t, err)
	_, err = s2.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, s2.Discard())
	assert.NoFileExists(t, s2.Path())
	assert.NoFileExists(t, d.FilePath(dayName(1)))
}

func TestSave_NoopWhenClean(t *testing.T) {
	root := t.TempDir()
	d := Open(root, testLog, 0, nil)
	_, err := d.Reconcile()
	require.NoError(t, err)
	require.NoError(t, d.Save())
	assert.NoFileExists(t, d.LogPath())

	writeFile(t, root, dayName(0), "a")
	require.NoError(t, d.Append(dayName(0), "Moon"))
	require.NoError(t, d.Save())
	assert.Equal(t, map[string]string{dayName(0): "Moon"}, readLog(t, root))
}
