package open

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/logexpect/internal/index"
)

var ErrNotIndexed = errors.New("log not indexed")

// OpenRecord opens an indexed log in $EDITOR at lineNum. Lines past the end
// of the indexed log are clamped to its last line.
func OpenRecord(db *index.DB, logPath string, lineNum int) error {
	lg, err := db.GetLog(logPath)
	if err != nil {
		return fmt.Errorf("get log: %w", err)
	}
	if lg == nil {
		return fmt.Errorf("%w: %s", ErrNotIndexed, logPath)
	}
	if lg.Lines > 0 && lineNum > lg.Lines {
		lineNum = lg.Lines
	}
	return OpenLog(logPath, lineNum)
}

func OpenLog(logPath string, lineNum int) error {
	if _, err := os.Stat(logPath); err != nil {
		return fmt.Errorf("file not found: %s", logPath)
	}
	if lineNum < 1 {
		lineNum = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := editorCommand(editor, logPath, lineNum)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func editorCommand(editor, filePath string, lineNum int) *exec.Cmd {
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		return exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		return exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		return exec.Command(editor, filePath)
	}
}
