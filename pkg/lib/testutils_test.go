package lib_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/pkg/lib"
)

func TestGrepFile(t *testing.T) {
	const logData = `2024-01-01T00:00:00Z 0 [System] [MY-010116] [Server] starting as process 42
2024-01-01T00:00:01Z 0 [Warning] [MY-010068] [Server] CA certificate is self signed.
2024-01-01T00:00:02Z 0 [ERROR] [MY-010119] [Server] Aborting
2024-01-01T00:00:03Z 0 [System] [MY-010910] [Server] Shutdown complete
2024-01-01T00:00:04Z 0 [Note] ROOT account ready`

	tests := map[string]struct {
		pattern    string
		missing    bool
		expMatches []string
		expErr     bool
	}{
		"A plain word should match the lines containing it.": {
			pattern:    "Aborting",
			expMatches: []string{"2024-01-01T00:00:02Z 0 [ERROR] [MY-010119] [Server] Aborting"},
		},

		"A glob should match anywhere in the line.": {
			pattern: "System*MY-0101",
			expMatches: []string{
				"2024-01-01T00:00:00Z 0 [System] [MY-010116] [Server] starting as process 42",
			},
		},

		"A question mark should match a single character.": {
			pattern: "MY-01011?",
			expMatches: []string{
				"2024-01-01T00:00:00Z 0 [System] [MY-010116] [Server] starting as process 42",
				"2024-01-01T00:00:02Z 0 [ERROR] [MY-010119] [Server] Aborting",
			},
		},

		"Brackets should match literally.": {
			pattern:    "[ERROR]",
			expMatches: []string{"2024-01-01T00:00:02Z 0 [ERROR] [MY-010119] [Server] Aborting"},
		},

		"Brackets next to wildcards should match literally.": {
			pattern: "[MY-0101??]*[Server]",
			expMatches: []string{
				"2024-01-01T00:00:00Z 0 [System] [MY-010116] [Server] starting as process 42",
				"2024-01-01T00:00:02Z 0 [ERROR] [MY-010119] [Server] Aborting",
			},
		},

		"Braces should match literally.": {
			pattern:    "{ERROR,Warning}",
			expMatches: []string{},
		},

		"A pattern without matches should return no lines.": {
			pattern:    "InnoDB",
			expMatches: []string{},
		},

		"A missing file should fail.": {
			pattern: "ERROR",
			missing: true,
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			client := newTestClient(t)

			path := filepath.Join(t.TempDir(), "error.log")
			if !test.missing {
				require.NoError(t, os.WriteFile(path, []byte(logData), 0o644))
			}

			matches, err := client.GrepFile(path, test.pattern)

			if test.expErr {
				assert.Error(err)
				assert.Contains(err.Error(), "grep error: "+path)
				return
			}

			assert.NoError(err)
			assert.Equal(test.expMatches, matches)
		})
	}
}

func TestMakeFileReadonly(t *testing.T) {
	tests := map[string]struct {
		missing bool
		exp     int
	}{
		"Making an existing file read only should work.": {
			exp: 0,
		},

		"Making a missing file read only should fail.": {
			missing: true,
			exp:     -1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			client := newTestClient(t)

			path := filepath.Join(t.TempDir(), "my.cnf")
			if !test.missing {
				require.NoError(t, os.WriteFile(path, []byte("[mysqld]\n"), 0o644))
			}

			assert.Equal(test.exp, client.MakeFileReadonly(path))

			if !test.missing {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(os.FileMode(0o444), info.Mode().Perm())
			}
		})
	}
}

func TestFail(t *testing.T) {
	type failure struct {
		at  lib.TestContext
		msg string
	}

	tests := map[string]struct {
		setContext  bool
		expFailures []failure
	}{
		"A failure should be attributed to the test execution context.": {
			setContext: true,
			expFailures: []failure{
				{at: lib.TestContext{File: "group_replication.js", Line: 42}, msg: "member never got online"},
			},
		},

		"A failure without context should be reported anyway.": {
			expFailures: []failure{
				{msg: "member never got online"},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var got []failure
			client := newTestClientWithConfig(t, lib.Config{
				FailureReporter: func(at lib.TestContext, msg string) {
					got = append(got, failure{at: at, msg: msg})
				},
			})

			if test.setContext {
				client.SetTestExecutionContext("group_replication.js", 42)
			}
			client.Fail("member never got online")

			assert.Equal(test.expFailures, got)
		})
	}
}

func TestTestContextString(t *testing.T) {
	assert.Equal(t, "test.js:7", lib.TestContext{File: "test.js", Line: 7}.String())
	assert.Equal(t, "unknown location", lib.TestContext{}.String())
}

func TestGetShellLogPath(t *testing.T) {
	client := newTestClientWithConfig(t, lib.Config{LogFile: "/var/log/dbsandbox.log"})
	assert.Equal(t, "/var/log/dbsandbox.log", client.GetShellLogPath())
}

func TestGetSandboxLogPath(t *testing.T) {
	dir := t.TempDir()
	client := newTestClientWithConfig(t, lib.Config{SandboxDir: dir})

	assert.Equal(t, filepath.Join(dir, "3310", "sandboxdata", "error.log"), client.GetSandboxLogPath(3310))
	assert.Equal(t, filepath.Join(dir, "3310", "my.cnf"), client.GetSandboxConfPath(3310))
}

func TestExpectPrompt(t *testing.T) {
	assert := assert.New(t)
	client := newTestClient(t)

	assert.NoError(client.ExpectPrompt("Name: ", "dbsandbox"))
	assert.NoError(client.ExpectPassword(lib.AnyPrompt, "root"))
	assert.Equal(2, client.PendingPrompts())
}
