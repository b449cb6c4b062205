package device

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/moonexport/internal/config"
)

// fakeBridge implements Bridge for tests. Pull copies from pullFiles,
// keyed by remote path; missing keys fail like a disconnected device.
type fakeBridge struct {
	root        bool
	listings    map[string][]string
	findFiles   []string
	findErr     error
	pullFiles   map[string]string // remote path -> local fixture to copy
	privResults map[string]error  // privileged command -> result
	privCalls   []string
}

func (f *fakeBridge) List(dir string) ([]string, error) {
	entries, ok := f.listings[dir]
	if !ok {
		return nil, ErrNotFound
	}
	return entries, nil
}

func (f *fakeBridge) FindFiles(root string) ([]string, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findFiles, nil
}

func (f *fakeBridge) Pull(remotePath, localPath string) error {
	fixture, ok := f.pullFiles[remotePath]
	if !ok {
		return ErrNotFound
	}
	data, err := os.ReadFile(fixture)
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (f *fakeBridge) RunPrivileged(command string) (string, error) {
	f.privCalls = append(f.privCalls, command)
	if err, ok := f.privResults[command]; ok {
		return "", err
	}
	return "", nil
}

func (f *fakeBridge) HasRoot() bool {
	return f.root
}

// writeBackupArchive builds an .mrpro-style zip whose entries map names to
// contents, and returns its path.
func writeBackupArchive(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.mrpro")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func deviceConfig(useRoot bool) config.Device {
	return config.Device{
		UseRoot:   useRoot,
		BackupDir: config.DefaultBackupDir,
		BooksDir:  config.DefaultBooksDir,
	}
}

func TestDatabaseRetriever_RootTier(t *testing.T) {
	dbFixture := filepath.Join(t.TempDir(), "live.db")
	require.NoError(t, os.WriteFile(dbFixture, []byte("live database bytes"), 0o644))

	// Every probe misses except the free build's mrbooks.db, so the loop
	// has to survive earlier failures to reach it.
	probes := allProbesFail()
	delete(probes, "ls /data/data/com.flyersoft.moonreader/databases/mrbooks.db")

	bridge := &fakeBridge{
		root: true,
		pullFiles: map[string]string{
			"/sdcard/moon_temp_pull.db": dbFixture,
		},
		privResults: probes,
	}

	dest := filepath.Join(t.TempDir(), "moon.db")
	r := NewDatabaseRetriever(bridge, deviceConfig(true))
	require.NoError(t, r.Retrieve(dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "live database bytes", string(data))

	// The device-side staging copy is removed after the pull.
	assert.Contains(t, bridge.privCalls, "rm /sdcard/moon_temp_pull.db")
}

func TestDatabaseRetriever_BackupTier(t *testing.T) {
	// The largest .tag entry is the notes database; the manifest-style
	// small entries must be passed over.
	archive := writeBackupArchive(t, map[string]string{
		"1.tag":       "tiny",
		"2.tag":       strings.Repeat("notes database payload ", 50),
		"_names.list": "manifest",
	})

	bridge := &fakeBridge{
		root: false,
		listings: map[string][]string{
			config.DefaultBackupDir: {"20240101_090000.mrpro", "20240301_090000.mrpro", "readme.txt"},
		},
		pullFiles: map[string]string{
			// Only the lexicographically newest backup is pullable, which
			// proves the sort picked it.
			config.DefaultBackupDir + "20240301_090000.mrpro": archive,
		},
	}

	dest := filepath.Join(t.TempDir(), "moon.db")
	r := NewDatabaseRetriever(bridge, deviceConfig(true))
	require.NoError(t, r.Retrieve(dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "notes database payload")

	// The pulled archive is cleaned up after extraction.
	_, err = os.Stat(dest + ".zip")
	assert.True(t, os.IsNotExist(err))
}

func TestDatabaseRetriever_BackupDirWithoutTrailingSlash(t *testing.T) {
	archive := writeBackupArchive(t, map[string]string{"1.tag": "backup db"})

	bridge := &fakeBridge{
		root: false,
		listings: map[string][]string{
			"/sdcard/custom_backups": {"20240101_090000.mrpro"},
		},
		pullFiles: map[string]string{
			"/sdcard/custom_backups/20240101_090000.mrpro": archive,
		},
	}

	cfg := deviceConfig(false)
	cfg.BackupDir = "/sdcard/custom_backups"

	dest := filepath.Join(t.TempDir(), "moon.db")
	r := NewDatabaseRetriever(bridge, cfg)
	require.NoError(t, r.Retrieve(dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "backup db", string(data))
}

func TestDatabaseRetriever_NoDatabaseAnywhere(t *testing.T) {
	bridge := &fakeBridge{
		root:     false,
		listings: map[string][]string{config.DefaultBackupDir: {"notes.txt"}},
	}

	dest := filepath.Join(t.TempDir(), "moon.db")
	r := NewDatabaseRetriever(bridge, deviceConfig(true))
	assert.ErrorIs(t, r.Retrieve(dest), ErrNoDatabase)
}

func TestDatabaseRetriever_RootProbeFailuresFallBackToBackup(t *testing.T) {
	archive := writeBackupArchive(t, map[string]string{"1.tag": "backup db"})

	bridge := &fakeBridge{
		root:        true,
		privResults: allProbesFail(),
		listings: map[string][]string{
			config.DefaultBackupDir: {"20240101_090000.mrpro"},
		},
		pullFiles: map[string]string{
			config.DefaultBackupDir + "20240101_090000.mrpro": archive,
		},
	}

	dest := filepath.Join(t.TempDir(), "moon.db")
	r := NewDatabaseRetriever(bridge, deviceConfig(true))
	require.NoError(t, r.Retrieve(dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "backup db", string(data))
}

func allProbesFail() map[string]error {
	results := make(map[string]error)
	for _, pkg := range config.MoonReaderPackages {
		for _, name := range config.DatabaseNames {
			results["ls /data/data/"+pkg+"/databases/"+name] = ErrNotFound
		}
	}
	return results
}
