package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadList reads a list file of input locations, one per line. Blank lines
// and lines starting with '#' are skipped. Relative local paths are resolved
// against the list file's directory; URLs are returned unchanged.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Dir(path)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.Contains(line, "://") && !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}
