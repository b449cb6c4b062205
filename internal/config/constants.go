package config

// Moon+ Reader package identifiers, in probe order. The paid build is
// checked first since it is the common case for people backing up notes.
var MoonReaderPackages = []string{
	"com.flyersoft.moonreaderp",
	"com.flyersoft.moonreader",
}

// Database filenames Moon+ Reader has used across versions.
var DatabaseNames = []string{
	"mrbooks.db",
	"book_notes.db",
	"notes.db",
}

const (
	// DefaultBackupDir is where Moon+ Reader writes .mrpro backups on-device.
	DefaultBackupDir = "/sdcard/Books/MoonReader/Backup/"

	// DefaultBooksDir is the remote root indexed to relocate moved books.
	DefaultBooksDir = "/sdcard/Books/"

	// DefaultHistoryPath is the default location of the watermark store.
	DefaultHistoryPath = "./moonexport-history.db"

	// BackupExtension marks Moon+ Reader backup archives.
	BackupExtension = ".mrpro"

	// DatabaseTagExtension marks archive entries holding raw database bytes.
	DatabaseTagExtension = ".tag"
)
