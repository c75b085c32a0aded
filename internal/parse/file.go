package parse

import (
	"bufio"
	"errors"

	"github.com/spf13/afero"
)

// MaxLineSize bounds a single log line.
const MaxLineSize = 10 * 1024 * 1024 // 10MB

// ParseFile reads a whole node log and returns every FSM record in it.
// Malformed transition lines are collected in Errors instead of aborting,
// so the index can still show the rest of the file.
func ParseFile(fs afero.Fs, filePath string, ex Extractor) (*ParseResult, error) {
	if ex == nil {
		ex = RiftExtractor{}
	}

	f, err := fs.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Meta: FileMeta{
			FilePath: filePath,
			Mtime:    info.ModTime(),
			Size:     info.Size(),
		},
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := ex.Parse(line, lineNum)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				result.Errors = append(result.Errors, pe)
				continue
			}
			return nil, err
		}
		if rec == nil {
			continue
		}

		if result.Meta.FirstTS.IsZero() {
			result.Meta.FirstTS = rec.Timestamp
		}
		result.Meta.LastTS = rec.Timestamp
		if rec.IsTransition() {
			result.Meta.Transitions++
		}
		result.Records = append(result.Records, *rec)
	}
	result.Meta.Lines = lineNum

	return result, scanner.Err()
}
