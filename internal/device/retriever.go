package device

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/mrlokans/moonexport/internal/config"
	"github.com/mrlokans/moonexport/internal/utils"
)

// ErrNoDatabase means neither retrieval tier produced a notes database.
// The caller aborts the run on it: with no database there is nothing to do.
var ErrNoDatabase = errors.New("device: no notes database found")

// deviceTempDB is the world-readable staging path used in root mode.
const deviceTempDB = "/sdcard/moon_temp_pull.db"

// DatabaseRetriever obtains a local copy of the Moon+ Reader notes database.
// It tries the live application databases first (root access required) and
// falls back to extracting the newest on-device backup archive.
type DatabaseRetriever struct {
	bridge    Bridge
	backupDir string
	useRoot   bool
}

func NewDatabaseRetriever(bridge Bridge, cfg config.Device) *DatabaseRetriever {
	useRoot := false
	if cfg.UseRoot {
		useRoot = bridge.HasRoot()
		if useRoot {
			log.Printf("Root access confirmed")
		} else {
			log.Printf("No root access detected, using backup mode")
		}
	} else {
		log.Printf("Root mode disabled, using backup mode")
	}

	return &DatabaseRetriever{
		bridge:    bridge,
		backupDir: cfg.BackupDir,
		useRoot:   useRoot,
	}
}

// Retrieve writes the notes database to destPath. Individual probe failures
// inside a tier are non-fatal; only the exhaustion of both tiers is.
func (r *DatabaseRetriever) Retrieve(destPath string) error {
	if r.useRoot {
		if r.pullLiveDatabase(destPath) {
			return nil
		}
	}
	if r.pullBackupDatabase(destPath) {
		return nil
	}
	return ErrNoDatabase
}

// pullLiveDatabase probes the known package/database combinations under
// /data/data. The app sandbox is unreadable to adb pull, so a hit is first
// copied to a world-readable temp path, pulled, then removed.
func (r *DatabaseRetriever) pullLiveDatabase(destPath string) bool {
	for _, pkg := range config.MoonReaderPackages {
		for _, name := range config.DatabaseNames {
			remote := fmt.Sprintf("/data/data/%s/databases/%s", pkg, name)
			if _, err := r.bridge.RunPrivileged("ls " + remote); err != nil {
				continue
			}
			log.Printf("Found live database: %s", remote)

			cmd := fmt.Sprintf("cp %s %s && chmod 666 %s", remote, deviceTempDB, deviceTempDB)
			if _, err := r.bridge.RunPrivileged(cmd); err != nil {
				log.Printf("Staging %s failed: %v", remote, err)
				continue
			}
			err := r.bridge.Pull(deviceTempDB, destPath)
			if _, rmErr := r.bridge.RunPrivileged("rm " + deviceTempDB); rmErr != nil {
				log.Printf("Could not remove device temp file %s: %v", deviceTempDB, rmErr)
			}
			if err != nil {
				log.Printf("Pulling %s failed: %v", remote, err)
				continue
			}
			return true
		}
	}
	return false
}

// pullBackupDatabase pulls the newest .mrpro backup and extracts the
// database from it. Backup filenames are timestamp-prefixed, so a
// descending lexicographic sort yields the latest; if that naming
// convention is ever violated the pick is wrong.
func (r *DatabaseRetriever) pullBackupDatabase(destPath string) bool {
	entries, err := r.bridge.List(r.backupDir)
	if err != nil {
		log.Printf("Listing backup dir %s failed: %v", r.backupDir, err)
		return false
	}

	var backups []string
	for _, name := range entries {
		if strings.HasSuffix(name, config.BackupExtension) {
			backups = append(backups, name)
		}
	}
	if len(backups) == 0 {
		log.Printf("No %s backups in %s", config.BackupExtension, r.backupDir)
		return false
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))

	// The configured backup dir may or may not carry a trailing slash.
	latest := path.Join(r.backupDir, backups[0])
	log.Printf("Pulling backup: %s", latest)

	archivePath := destPath + ".zip"
	if err := r.bridge.Pull(latest, archivePath); err != nil {
		log.Printf("Pulling backup failed: %v", err)
		return false
	}
	defer utils.RemoveWithRetry(archivePath)

	if err := extractDatabaseFromArchive(archivePath, destPath); err != nil {
		log.Printf("Extracting database from %s failed: %v", backups[0], err)
		return false
	}
	return true
}

// extractDatabaseFromArchive writes the bytes of the largest .tag entry to
// destPath. Backups hold several tag files; the notes database is reliably
// the largest one.
func extractDatabaseFromArchive(archivePath, destPath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer reader.Close()

	var largest *zip.File
	for _, f := range reader.File {
		if !strings.HasSuffix(f.Name, config.DatabaseTagExtension) {
			continue
		}
		if largest == nil || f.UncompressedSize64 > largest.UncompressedSize64 {
			largest = f
		}
	}
	if largest == nil {
		return fmt.Errorf("no %s entries in backup archive", config.DatabaseTagExtension)
	}

	rc, err := largest.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", largest.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to write database bytes: %w", err)
	}
	return nil
}
