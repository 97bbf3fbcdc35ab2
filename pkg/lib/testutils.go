package lib

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gobwas/glob"

	"github.com/slok/dbsandbox/internal/model"
)

// GrepFile returns the lines of the file at path matching the glob pattern
// anywhere in the line, e.g: "*Plugin*loaded" or "[ERROR]". Only * and ? are
// wildcards, every other character matches itself.
func (c *Client) GrepFile(path, pattern string) ([]string, error) {
	g, err := glob.Compile("*" + quoteGlob(pattern) + "*")
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w: %w", pattern, err, ErrNotValid)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grep error: %s: %w", path, err)
	}
	defer f.Close()

	matches := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); g.Match(line) {
			matches = append(matches, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("grep error: %s: %w", path, err)
	}

	return matches, nil
}

// quoteGlob escapes everything in pattern except the * and ? wildcards, log
// lines are full of brackets that must match literally.
func quoteGlob(pattern string) string {
	var b strings.Builder
	start := 0
	for i, r := range pattern {
		if r != '*' && r != '?' {
			continue
		}
		b.WriteString(glob.QuoteMeta(pattern[start:i]))
		b.WriteRune(r)
		start = i + 1
	}
	b.WriteString(glob.QuoteMeta(pattern[start:]))

	return b.String()
}

// MakeFileReadonly removes the write permissions of the file at path.
// It returns 0 on success and -1 on failure.
func (c *Client) MakeFileReadonly(path string) int {
	if err := os.Chmod(path, 0o444); err != nil {
		c.logger.Warningf("Could not make %s read only: %v", path, err)
		return -1
	}
	return 0
}

// GetShellLogPath returns the file the logger writes to, empty when unknown.
func (c *Client) GetShellLogPath() string { return c.logFile }

// SetTestExecutionContext sets the test location the next failures are
// attributed to.
func (c *Client) SetTestExecutionContext(file string, line int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.testCtx = model.TestContext{File: file, Line: line}
}

// Fail reports a test failure described by msg to the [FailureReporter],
// attributed to the current test execution context.
func (c *Client) Fail(msg string) {
	c.mu.Lock()
	at := TestContext(c.testCtx)
	c.mu.Unlock()

	c.reporter(at, msg)
}
