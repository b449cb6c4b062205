// Package books pulls book files from the device so highlights can be
// enriched with surrounding text. Every failure here is non-fatal: a book
// that cannot be fetched is exported without contextual excerpts.
package books

import (
	"log"
	"path"
	"strings"

	"github.com/mrlokans/moonexport/internal/device"
	"github.com/mrlokans/moonexport/internal/utils"
)

// emulatedPrefix is the app-visible alias of the sdcard; adb resolves the
// /sdcard form more reliably.
const emulatedPrefix = "/storage/emulated/0/"

// Fetcher retrieves book files by their recorded paths, falling back to the
// remote file index when a book was moved since the highlight was made.
type Fetcher struct {
	bridge device.Bridge
	index  *device.FileIndex
}

func NewFetcher(bridge device.Bridge, index *device.FileIndex) *Fetcher {
	return &Fetcher{bridge: bridge, index: index}
}

// Fetch pulls the book recorded at recordedPath into localDest and reports
// whether a file is now available there. Any pre-existing file at localDest
// is cleared first so a stale leftover from a crashed run is never mistaken
// for a successful pull.
func (f *Fetcher) Fetch(recordedPath, localDest string) bool {
	utils.RemoveWithRetry(localDest)

	normalized := strings.Replace(recordedPath, emulatedPrefix, "/sdcard/", 1)
	if strings.HasPrefix(normalized, "/") {
		if err := f.bridge.Pull(normalized, localDest); err == nil {
			return true
		}
	}

	basename := path.Base(recordedPath)
	resolved, ok := f.index.Lookup(basename)
	if !ok {
		return false
	}
	if err := f.bridge.Pull(resolved, localDest); err != nil {
		log.Printf("Pulling relocated book %s failed: %v", resolved, err)
		return false
	}
	return true
}
