package device

import (
	"log"
	"path"
)

// FileIndex maps file basenames to their absolute remote paths. It is built
// once per run before the export loop and read-only afterwards; the remote
// filesystem may change between runs, so it is never persisted.
//
// When two remote files share a basename the one listed last wins. That
// ambiguity is inherited from the original tool and left as-is.
type FileIndex struct {
	byBasename map[string]string
}

// NewFileIndex indexes the given remote paths by basename.
func NewFileIndex(paths []string) *FileIndex {
	byBasename := make(map[string]string, len(paths))
	for _, p := range paths {
		byBasename[path.Base(p)] = p
	}
	return &FileIndex{byBasename: byBasename}
}

// BuildFileIndex lists all regular files under root and indexes them.
func BuildFileIndex(bridge Bridge, root string) (*FileIndex, error) {
	paths, err := bridge.FindFiles(root)
	if err != nil {
		return nil, err
	}
	index := NewFileIndex(paths)
	log.Printf("Indexed %d files under %s", index.Len(), root)
	return index, nil
}

// Lookup returns the remote path for a basename. Absence is a normal
// outcome: the book simply has no locatable source on the device.
func (i *FileIndex) Lookup(basename string) (string, bool) {
	p, ok := i.byBasename[basename]
	return p, ok
}

// Len reports the number of indexed files.
func (i *FileIndex) Len() int {
	return len(i.byBasename)
}
