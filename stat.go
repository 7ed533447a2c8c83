package fatinspect

import (
	"os"
	"time"
)

// FileInfo returns an os.FileInfo view of the entry.
func (e Entry) FileInfo() os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry Entry
}

func (e entryFileInfo) Name() string {
	return e.entry.DisplayName()
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.FileSize)
}

func (e entryFileInfo) Mode() os.FileMode {
	mode := os.FileMode(0644)
	if e.entry.IsReadOnly() {
		mode = 0444
	}

	if e.IsDir() {
		return mode | os.ModeDir | 0111
	}
	return mode
}

func (e entryFileInfo) ModTime() time.Time {
	return e.entry.Modified
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.Kind == KindDirectory
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}
