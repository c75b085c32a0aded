package scan

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/Zuo-Peng/logexpect/internal/expect"
	"github.com/spf13/afero"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// ScanRoot returns every *.log file below root, sorted by path. Session
// traces are never node logs: files named like the default trace or any of
// traceNames are left out.
func ScanRoot(fs afero.Fs, root string, traceNames ...string) ([]FileInfo, error) {
	skip := map[string]bool{filepath.Base(expect.DefaultTracePath): true}
	for _, n := range traceNames {
		skip[filepath.Base(n)] = true
	}

	if _, err := fs.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if path != root && len(base) > 1 && base[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".log" || skip[filepath.Base(path)] {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
