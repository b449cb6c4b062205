package utils

import (
	"log"
	"os"
	"time"
)

const (
	removeAttempts = 3
	removeBackoff  = 100 * time.Millisecond
)

// RemoveWithRetry deletes a file, retrying briefly on failure. Windows can
// hold a lock on recently closed files; after the attempts are exhausted
// the leftover is logged and abandoned, never fatal.
func RemoveWithRetry(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	var err error
	for i := 0; i < removeAttempts; i++ {
		if err = os.Remove(path); err == nil {
			return
		}
		time.Sleep(removeBackoff)
	}
	log.Printf("Could not remove %s: %v", path, err)
}
