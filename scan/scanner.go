package scan

import (
	"io/fs"
	"mime"
	"path/filepath"
	"strings"

	"pathsift/ignore"
)

// ScanTree walks the directory tree under root and returns an Entry for
// every path the matcher keeps, keyed by root-relative path (slash form).
// Ignored directories are pruned without descending; ignored files are
// skipped. A nil matcher keeps everything.
func ScanTree(root string, matcher *ignore.Matcher) (map[string]Entry, error) {
	l := sub("scanner")
	l.Debug("scan start", "root", root)
	result := make(map[string]Entry)
	now := nowFunc().UnixNano()

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.Warn("scan walk error", "path", path, "err", err)
			return err
		}

		// Skip the root itself
		if path == root {
			return nil
		}

		// Never index our own artifacts or the ignore file
		if d.IsDir() && d.Name() == IndexDirName {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == ignore.IgnoreFile {
			return nil
		}

		if d.IsDir() {
			if matcher != nil && matcher.IsDirIgnored(path) {
				l.Debug("scan prune dir", "path", path)
				return filepath.SkipDir
			}
		} else if matcher != nil && matcher.IsFileIgnored(path) {
			l.Debug("scan skip file", "path", path)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			l.Warn("scan stat error", "path", path, "err", err)
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		e := Entry{
			Path:  relPath,
			Name:  d.Name(),
			Type:  ClassifyType(d.Name(), d.IsDir()),
			Mtime: info.ModTime().UnixNano(),
			IsDir: d.IsDir(),
			Seen:  now,
		}
		if !d.IsDir() {
			size := info.Size()
			e.Size = &size
		}
		result[relPath] = e

		return nil
	})

	l.Debug("scan complete", "root", root, "entries", len(result))
	return result, err
}

// ClassifyType determines the file type from its extension.
// Returns one of: "dir", "video", "audio", "image", "pdf", "text", "blob"
func ClassifyType(name string, isDir bool) string {
	if isDir {
		return "dir"
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "blob"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return classifyByExtension(ext)
	}

	parts := strings.SplitN(mimeType, "/", 2)
	switch parts[0] {
	case "video":
		return "video"
	case "audio":
		return "audio"
	case "image":
		return "image"
	case "text":
		return "text"
	case "application":
		return classifyApplication(parts[1], ext)
	}

	return "blob"
}

func classifyByExtension(ext string) string {
	switch ext {
	case ".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v":
		return "video"
	case ".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a", ".opus":
		return "audio"
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".tiff", ".ico":
		return "image"
	case ".pdf":
		return "pdf"
	case ".txt", ".md", ".json", ".xml", ".csv", ".yaml", ".yml", ".toml",
		".go", ".py", ".js", ".ts", ".html", ".css", ".sh", ".bash",
		".c", ".h", ".cpp", ".java", ".rs", ".rb", ".php", ".vue", ".sql":
		return "text"
	}
	return "blob"
}

func classifyApplication(subtype, ext string) string {
	if subtype == "pdf" || ext == ".pdf" {
		return "pdf"
	}
	if strings.Contains(subtype, "json") || strings.Contains(subtype, "xml") ||
		strings.Contains(subtype, "javascript") || strings.Contains(subtype, "typescript") {
		return "text"
	}
	return "blob"
}
