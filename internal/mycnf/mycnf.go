// Package mycnf edits server option files at the text level.
//
// Files are line oriented: `[section]` headers, `key=value` or bare `key` lines.
// No quoting, escaping or includes are interpreted and every line that is not
// edited is written back untouched.
package mycnf

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/moby/sys/atomicwriter"
)

// ServerSection is the section header whose options Change edits.
const ServerSection = "[mysqld]"

// Change sets option (`key=value`, or a bare `key`) in the server section of the file.
//
// Every line found after the server section header whose text up to and
// including the first `=` matches the option's is replaced. A bare key only
// replaces identical lines. If nothing matched, the option is appended at the
// end of the file.
func Change(path, option string) error {
	matches := optionMatcher(option)

	found, foundServer := false, false
	err := rewrite(path, func(line string, w *bytes.Buffer) {
		if foundServer && matches(line) {
			found = true
			writeLine(w, option)
			return
		}
		if line == ServerSection {
			foundServer = true
		}
		writeLine(w, line)
	}, func(w *bytes.Buffer) {
		if !found {
			writeLine(w, option)
		}
	})
	if err != nil {
		return fmt.Errorf("could not change option %q on %s: %w", option, path, err)
	}

	return nil
}

// Remove drops every line of the file containing substr, regardless of the section.
func Remove(path, substr string) error {
	err := rewrite(path, func(line string, w *bytes.Buffer) {
		if !strings.Contains(line, substr) {
			writeLine(w, line)
		}
	}, nil)
	if err != nil {
		return fmt.Errorf("could not remove option %q from %s: %w", substr, path, err)
	}

	return nil
}

func optionMatcher(option string) func(line string) bool {
	idx := strings.IndexByte(option, '=')
	if idx < 0 {
		return func(line string) bool { return line == option }
	}

	prefix := option[:idx+1]
	return func(line string) bool { return strings.HasPrefix(line, prefix) }
}

// rewrite streams the file lines through fn and atomically replaces the file
// with the result. The original is never left partially written.
func rewrite(path string, fn func(line string, w *bytes.Buffer), end func(w *bytes.Buffer)) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not open file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}

	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text(), &out)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}
	if end != nil {
		end(&out)
	}

	if err := atomicwriter.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("could not write file: %w", err)
	}

	return nil
}

func writeLine(w *bytes.Buffer, line string) {
	w.WriteString(line)
	w.WriteByte('\n')
}
