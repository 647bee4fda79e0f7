package scan

import "time"

// nowFunc is the time source, replaceable in tests.
var nowFunc = time.Now

// IndexDirName is the directory holding pathsift's own artifacts (the index
// database). It is never scanned or watched.
const IndexDirName = ".pathsift"

// Entry represents a file or directory recorded in the scan index.
// Paths are relative to the scan root, with forward slashes.
type Entry struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Type  string `json:"type"` // "dir"|"video"|"audio"|"image"|"pdf"|"text"|"blob"
	Size  *int64 `json:"size"` // nil for directories
	Mtime int64  `json:"mtime"` // nanoseconds
	IsDir bool   `json:"isDir"`
	Seen  int64  `json:"seen"` // nanoseconds, when the entry was last confirmed on disk
}
