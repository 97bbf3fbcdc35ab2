package mysql_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/dbsandbox/internal/cluster"
	clustermysql "github.com/slok/dbsandbox/internal/cluster/mysql"
	"github.com/slok/dbsandbox/internal/model"
	"github.com/slok/dbsandbox/internal/provisioning"
	"github.com/slok/dbsandbox/internal/provisioning/fake"
	"github.com/slok/dbsandbox/internal/provisioning/provisioningmock"
	"github.com/slok/dbsandbox/internal/replay"
	"github.com/slok/dbsandbox/internal/sandbox/mysql"
	"github.com/slok/dbsandbox/internal/utils/wait"
)

type testProbe struct {
	dirs []string
}

func (p *testProbe) WaitUntilDead(_ context.Context, dataDir string) error {
	p.dirs = append(p.dirs, dataDir)
	return nil
}

type testConn struct {
	version string
}

func (c testConn) Query(_ context.Context, sql string) (cluster.Result, error) {
	if sql != "select @@version" {
		return nil, fmt.Errorf("unexpected query %q", sql)
	}
	return clustermysql.NewResult(clustermysql.Row{c.version}), nil
}

func (c testConn) Close() error { return nil }

type testOpener struct {
	version string
	opened  []cluster.ConnOptions
}

func (o *testOpener) Open(_ context.Context, opts cluster.ConnOptions) (cluster.Conn, error) {
	o.opened = append(o.opened, opts)
	return testConn{version: o.version}, nil
}

type testEnv struct {
	root    string
	engine  *mysql.Engine
	prov    *fake.Provisioner
	probe   *testProbe
	opener  *testOpener
	sleeper *wait.Recorder
}

type testEnvConfig struct {
	mode            replay.Mode
	expectedVersion string
	serverVersion   string
	results         map[string][]model.Outcomes
	snapshotDir     string
	reuse           bool
	root            string
}

func newTestEnv(t *testing.T, cfg testEnvConfig) testEnv {
	t.Helper()

	if cfg.root == "" {
		cfg.root = t.TempDir()
	}
	if cfg.serverVersion == "" {
		cfg.serverVersion = "8.0.36"
	}

	prov, err := fake.NewProvisioner(fake.ProvisionerConfig{Results: cfg.results})
	require.NoError(t, err)

	env := testEnv{
		root:    cfg.root,
		prov:    prov,
		probe:   &testProbe{},
		opener:  &testOpener{version: cfg.serverVersion},
		sleeper: &wait.Recorder{},
	}

	env.engine, err = mysql.NewEngine(mysql.EngineConfig{
		SandboxDir:       cfg.root,
		ExpectedVersion:  cfg.expectedVersion,
		ReuseBoilerplate: cfg.reuse,
		SnapshotDir:      cfg.snapshotDir,
		Gate:             replay.NewGate(cfg.mode),
		Provisioner:      prov,
		Probe:            env.probe,
		Opener:           env.opener,
		Sleep:            env.sleeper.Sleep,
	})
	require.NoError(t, err)

	return env
}

func readConf(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewEngine(t *testing.T) {
	prov, _ := fake.NewProvisioner(fake.ProvisionerConfig{})

	tests := map[string]struct {
		config mysql.EngineConfig
		expErr bool
	}{
		"A valid config should create the engine.": {
			config: mysql.EngineConfig{SandboxDir: "/tmp/sandboxes", Provisioner: prov},
		},

		"A missing sandbox dir should fail.": {
			config: mysql.EngineConfig{Provisioner: prov},
			expErr: true,
		},

		"A missing provisioner should fail.": {
			config: mysql.EngineConfig{SandboxDir: "/tmp/sandboxes"},
			expErr: true,
		},

		"An invalid default port should fail.": {
			config: mysql.EngineConfig{SandboxDir: "/tmp/sandboxes", Provisioner: prov, DefaultPorts: []int{7000}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			e, err := mysql.NewEngine(test.config)
			if test.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				require.NotNil(e)
			}
		})
	}
}

func TestEngineDeploy(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, testEnvConfig{expectedVersion: "8.0.36"})

	require.NoError(env.engine.Deploy(ctx, 3310, "root"))

	// Boilerplate was built on the default boilerplate port and moved into place.
	assert.Equal(1, env.prov.CallCount("create"))
	create := env.prov.Calls()[0]
	assert.Equal(3300, create.Request.Port)
	assert.Equal(33000, create.Request.ExtendedPort)
	assert.Equal([]string{"innodb_log_file_size=1M", "innodb_log_buffer_size=1M", "innodb_data_file_path=ibdata1:10M:autoextend"}, create.Request.Options)
	assert.Equal([]cluster.ConnOptions{{Host: "localhost", Port: 3300, User: "root", Password: "root"}}, env.opener.opened)

	bp := filepath.Join(env.root, "myboilerplate")
	assert.NoDirExists(filepath.Join(env.root, "3300"))
	version, err := os.ReadFile(filepath.Join(bp, "version.txt"))
	require.NoError(err)
	assert.Equal("8.0.36", string(version))
	bpConf := readConf(t, filepath.Join(bp, "my.cnf"))
	assert.NotContains(bpConf, "port")
	assert.NotContains(bpConf, "datadir")
	assert.Contains(bpConf, "innodb_log_file_size=1M")
	assert.NoFileExists(filepath.Join(bp, "sandboxdata", "auto.cnf"))
	assert.NoFileExists(filepath.Join(bp, "sandboxdata", "error.log"))
	assert.FileExists(filepath.Join(bp, "sandboxdata", "ibdata1"))
	assert.Equal(model.BoilerplateSignature{RootPassword: "root", Version: "8.0.36"}, env.engine.Signature())

	// The sandbox is a started clone with its own identity.
	base := filepath.Join(env.root, "3310")
	conf := readConf(t, filepath.Join(base, "my.cnf"))
	dataDir := filepath.ToSlash(filepath.Join(base, "sandboxdata"))
	for _, exp := range []string{
		"\nport=3310\n",
		"\nserver_id=15655\n",
		"\ndatadir=" + dataDir + "\n",
		"\nlog_error=" + dataDir + "/error.log\n",
		"\npid_file=" + filepath.ToSlash(filepath.Join(base, "3310.pid")) + "\n",
		"\nsecure_file_priv=" + filepath.ToSlash(filepath.Join(base, "mysql-files")) + "\n",
		"\nloose_mysqlx_port=33100\n",
		"\nreport_port=3310\n",
		"\ngeneral_log=1\n",
	} {
		assert.Equal(1, strings.Count(conf, exp), exp)
	}
	assert.Equal(1, env.prov.CallCount("start"))
	assert.Equal([]string{filepath.Join(base, "sandboxdata")}, env.probe.dirs)

	// A second sandbox with the same password reuses the boilerplate.
	require.NoError(env.engine.Deploy(ctx, 3320, "root"))
	assert.Equal(1, env.prov.CallCount("create"))
	conf2 := readConf(t, filepath.Join(env.root, "3320", "my.cnf"))
	assert.Contains(conf2, "\nport=3320\n")
	assert.Contains(conf2, "\nserver_id=15665\n")
	assert.Contains(conf2, "3320.pid\n")
	assert.NotContains(conf2, "\nport=3310\n")
}

func TestEngineDeployPasswordChangeRebuilds(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, testEnvConfig{expectedVersion: "8.0.36"})

	require.NoError(env.engine.Deploy(ctx, 3310, "root"))
	require.NoError(env.engine.Deploy(ctx, 3320, "other"))

	assert.Equal(2, env.prov.CallCount("create"))
	assert.Equal("other", env.engine.Signature().RootPassword)
	assert.DirExists(filepath.Join(env.root, "3310"))
	assert.DirExists(filepath.Join(env.root, "3320"))
}

func TestEngineDeployWithoutExpectedVersionAlwaysRebuilds(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, testEnvConfig{})

	require.NoError(env.engine.Deploy(ctx, 3310, "root"))
	require.NoError(env.engine.Deploy(ctx, 3320, "root"))

	assert.Equal(2, env.prov.CallCount("create"))
	assert.DirExists(filepath.Join(env.root, "3320"))
}

func TestEngineDeployStaleBoilerplate(t *testing.T) {
	tests := map[string]struct {
		results map[string][]model.Outcomes
		expErr  error
	}{
		"A stale boilerplate should be rebuilt and the deploy retried.": {},

		"A stale boilerplate that can't be rebuilt should be fatal.": {
			results: map[string][]model.Outcomes{
				"create": {nil, {{Kind: model.OutcomeKindError, Message: "no space left"}}},
			},
			expErr: model.ErrFatal,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			env := newTestEnv(t, testEnvConfig{
				expectedVersion: "8.0.36",
				serverVersion:   "8.0.35",
				results:         test.results,
			})

			err := env.engine.Deploy(context.Background(), 3310, "root")
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}

			require.NoError(err)
			assert.Equal(2, env.prov.CallCount("create"))
			assert.Equal(1, env.prov.CallCount("delete"))
			assert.Equal(2, env.prov.CallCount("start"))
			assert.DirExists(filepath.Join(env.root, "3310"))
		})
	}
}

func TestEngineDeployBoilerplateBuildFailure(t *testing.T) {
	env := newTestEnv(t, testEnvConfig{
		expectedVersion: "8.0.36",
		results: map[string][]model.Outcomes{
			"create": {{{Kind: model.OutcomeKindWarning, Message: "something odd"}}},
		},
	})

	err := env.engine.Deploy(context.Background(), 3310, "root")
	assert.ErrorIs(t, err, model.ErrBoilerplateBuild)
	assert.NotErrorIs(t, err, model.ErrFatal)
}

func TestEngineDeployReuseBoilerplate(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	root := t.TempDir()
	first := newTestEnv(t, testEnvConfig{root: root, expectedVersion: "8.0.36"})
	require.NoError(first.engine.Deploy(ctx, 3310, "root"))

	second := newTestEnv(t, testEnvConfig{root: root, expectedVersion: "8.0.36", reuse: true})
	require.NoError(second.engine.Deploy(ctx, 3320, "root"))

	assert.Equal(0, second.prov.CallCount("create"))
	assert.Equal("8.0.36", second.engine.Signature().Version)
	assert.DirExists(filepath.Join(root, "3320"))
}

func TestEngineReplayHasNoSideEffects(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, testEnvConfig{mode: replay.ModeReplay, expectedVersion: "8.0.36"})

	require.NoError(env.engine.Deploy(ctx, 3310, "root"))
	require.NoError(env.engine.Start(ctx, 3310))
	require.NoError(env.engine.Stop(ctx, 3310, "root"))
	require.NoError(env.engine.Kill(ctx, 3310))
	require.NoError(env.engine.Restart(ctx, 3310, "root"))

	assert.Empty(env.prov.Calls())
	assert.Empty(env.probe.dirs)
	assert.Empty(env.opener.opened)
	entries, err := os.ReadDir(env.root)
	require.NoError(err)
	assert.Empty(entries)
}

func TestEngineDestroy(t *testing.T) {
	tests := map[string]struct {
		mode     replay.Mode
		expCalls []string
	}{
		"Destroying should kill, delete and remove the files.": {
			mode:     replay.ModeDirect,
			expCalls: []string{"kill", "delete"},
		},

		"Destroying while replaying should only remove the files.": {
			mode: replay.ModeReplay,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			env := newTestEnv(t, testEnvConfig{mode: test.mode})
			base := filepath.Join(env.root, "3310")
			require.NoError(os.MkdirAll(filepath.Join(base, "sandboxdata"), 0o755))
			require.NoError(os.WriteFile(filepath.Join(base, "my.cnf"), []byte("[mysqld]\n"), 0o444))

			require.NoError(env.engine.Destroy(context.Background(), 3310))

			var gotCalls []string
			for _, c := range env.prov.Calls() {
				gotCalls = append(gotCalls, c.Operation)
			}
			assert.Equal(test.expCalls, gotCalls)
			assert.NoDirExists(base)
		})
	}
}

func TestEngineKillDeadSandboxReturnsImmediately(t *testing.T) {
	assert := assert.New(t)

	env := newTestEnv(t, testEnvConfig{})

	err := env.engine.Kill(context.Background(), 3310)
	assert.NoError(err)
	assert.Equal([]string{filepath.Join(env.root, "3310", "sandboxdata")}, env.probe.dirs)
	assert.Empty(env.sleeper.Slept)
}

func TestEngineStartRetries(t *testing.T) {
	failed := model.Outcomes{{Kind: model.OutcomeKindError, Message: "can't bind port"}}
	warned := model.Outcomes{{Kind: model.OutcomeKindWarning, Message: "slow start"}}

	tests := map[string]struct {
		results   []model.Outcomes
		expStarts int
		expSleeps int
		expErr    bool
	}{
		"A successful start should not retry.": {
			expStarts: 1,
		},

		"Warnings alone should be a successful start.": {
			results:   []model.Outcomes{warned},
			expStarts: 1,
		},

		"A start should be retried until it succeeds.": {
			results:   []model.Outcomes{failed, failed, warned},
			expStarts: 3,
			expSleeps: 2,
		},

		"A start should fail after five failed attempts.": {
			results:   []model.Outcomes{failed, failed, failed, failed, failed, failed},
			expStarts: 5,
			expSleeps: 4,
			expErr:    true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			env := newTestEnv(t, testEnvConfig{results: map[string][]model.Outcomes{"start": test.results}})
			require.NoError(t, os.MkdirAll(filepath.Join(env.root, "3310"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(env.root, "3310", "my.cnf"), []byte("[mysqld]\n"), 0o644))

			err := env.engine.Start(context.Background(), 3310)
			if test.expErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}

			assert.Equal(test.expStarts, env.prov.CallCount("start"))
			assert.Len(env.sleeper.Slept, test.expSleeps)
			for _, d := range env.sleeper.Slept {
				assert.Equal(time.Second, d)
			}
			assert.Len(env.probe.dirs, 1)
		})
	}
}

func TestEngineRestart(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	env := newTestEnv(t, testEnvConfig{})
	require.NoError(os.MkdirAll(filepath.Join(env.root, "3310"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(env.root, "3310", "my.cnf"), []byte("[mysqld]\n"), 0o644))

	require.NoError(env.engine.Restart(context.Background(), 3310, "root"))

	calls := env.prov.Calls()
	require.Len(calls, 2)
	assert.Equal("stop", calls[0].Operation)
	assert.Equal("root", calls[0].Request.Password)
	assert.Equal("start", calls[1].Operation)
}

func TestEngineConf(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	env := newTestEnv(t, testEnvConfig{})
	confPath := env.engine.ConfPath(3310)
	assert.Equal(filepath.Join(env.root, "3310", "my.cnf"), confPath)
	assert.Equal(filepath.Join(env.root, "3310", "sandboxdata", "error.log"), env.engine.LogPath(3310))

	// Missing sandbox.
	assert.Error(env.engine.ChangeConf(ctx, 3310, "port=3306"))

	require.NoError(os.MkdirAll(filepath.Dir(confPath), 0o755))
	require.NoError(os.WriteFile(confPath, []byte("[mysqld]\nport=3000\n"), 0o644))

	require.NoError(env.engine.ChangeConf(ctx, 3310, "port=3306"))
	assert.Equal("[mysqld]\nport=3306\n", readConf(t, confPath))

	require.NoError(env.engine.RemoveFromConf(ctx, 3310, "port"))
	assert.Equal("[mysqld]\n", readConf(t, confPath))
}

func TestEngineSnapshotConf(t *testing.T) {
	tests := map[string]struct {
		mode       replay.Mode
		noSnapshot bool
		prepare    func(t *testing.T, root, snapDir string)
		check      func(t *testing.T, root, snapDir string)
		expErr     error
	}{
		"Direct runs should do nothing.": {
			mode:       replay.ModeDirect,
			noSnapshot: true,
			check: func(t *testing.T, root, snapDir string) {
				assert.NoFileExists(t, filepath.Join(root, "3310", "my.cnf"))
			},
		},

		"Recording without snapshot dir should fail.": {
			mode:       replay.ModeRecord,
			noSnapshot: true,
			expErr:     model.ErrSnapshotDirNotSet,
		},

		"Recording should copy the configuration to the snapshot dir.": {
			mode: replay.ModeRecord,
			prepare: func(t *testing.T, root, snapDir string) {
				require.NoError(t, os.MkdirAll(filepath.Join(root, "3310"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(root, "3310", "my.cnf"), []byte("[mysqld]\nport=3310\n"), 0o644))
			},
			check: func(t *testing.T, root, snapDir string) {
				assert.Equal(t, "[mysqld]\nport=3310\n", readConf(t, filepath.Join(snapDir, "sandbox_3310_my.cnf")))
			},
		},

		"Replaying should restore the configuration creating the sandbox dir.": {
			mode: replay.ModeReplay,
			prepare: func(t *testing.T, root, snapDir string) {
				require.NoError(t, os.WriteFile(filepath.Join(snapDir, "sandbox_3310_my.cnf"), []byte("[mysqld]\nport=3310\n"), 0o644))
			},
			check: func(t *testing.T, root, snapDir string) {
				assert.Equal(t, "[mysqld]\nport=3310\n", readConf(t, filepath.Join(root, "3310", "my.cnf")))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			snapDir := t.TempDir()
			cfg := testEnvConfig{root: root, mode: test.mode, snapshotDir: snapDir}
			if test.noSnapshot {
				cfg.snapshotDir = ""
			}
			env := newTestEnv(t, cfg)
			if test.prepare != nil {
				test.prepare(t, root, snapDir)
			}

			err := env.engine.SnapshotConf(context.Background(), 3310)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			test.check(t, root, snapDir)
		})
	}
}

func TestEngineSnapshotErrorLog(t *testing.T) {
	t.Run("Recording should save every error log with an increasing index.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx := context.Background()

		snapDir := t.TempDir()
		env := newTestEnv(t, testEnvConfig{mode: replay.ModeRecord, snapshotDir: snapDir})
		logPath := env.engine.LogPath(3310)
		require.NoError(os.MkdirAll(filepath.Dir(logPath), 0o755))

		for i := 0; i < 2; i++ {
			require.NoError(env.engine.BeginSnapshotErrorLog(ctx, 3310))
			require.NoError(os.WriteFile(logPath, []byte(fmt.Sprintf("log %d", i)), 0o644))
			require.NoError(env.engine.EndSnapshotErrorLog(ctx, 3310))
		}

		assert.Equal("log 0", readConf(t, filepath.Join(snapDir, "sandbox_3310_0_error.log")))
		assert.Equal("log 1", readConf(t, filepath.Join(snapDir, "sandbox_3310_1_error.log")))
	})

	t.Run("Replaying should restore every error log with an increasing index.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)
		ctx := context.Background()

		snapDir := t.TempDir()
		require.NoError(os.WriteFile(filepath.Join(snapDir, "sandbox_3310_0_error.log"), []byte("log 0"), 0o644))
		require.NoError(os.WriteFile(filepath.Join(snapDir, "sandbox_3310_1_error.log"), []byte("log 1"), 0o644))
		env := newTestEnv(t, testEnvConfig{mode: replay.ModeReplay, snapshotDir: snapDir})

		require.NoError(env.engine.BeginSnapshotErrorLog(ctx, 3310))
		assert.Equal("log 0", readConf(t, env.engine.LogPath(3310)))
		require.NoError(env.engine.EndSnapshotErrorLog(ctx, 3310))
		require.NoError(env.engine.BeginSnapshotErrorLog(ctx, 3310))
		assert.Equal("log 1", readConf(t, env.engine.LogPath(3310)))
	})

	t.Run("Without snapshot dir only direct runs should be allowed.", func(t *testing.T) {
		assert := assert.New(t)
		ctx := context.Background()

		direct := newTestEnv(t, testEnvConfig{mode: replay.ModeDirect})
		assert.NoError(direct.engine.BeginSnapshotErrorLog(ctx, 3310))
		assert.NoError(direct.engine.EndSnapshotErrorLog(ctx, 3310))

		replaying := newTestEnv(t, testEnvConfig{mode: replay.ModeReplay})
		assert.ErrorIs(replaying.engine.BeginSnapshotErrorLog(ctx, 3310), model.ErrSnapshotDirNotSet)
		assert.ErrorIs(replaying.engine.EndSnapshotErrorLog(ctx, 3310), model.ErrSnapshotDirNotSet)
	})
}

func TestEngineCheck(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	env := newTestEnv(t, testEnvConfig{expectedVersion: "8.0.36"})

	outcomes := env.engine.Check(context.Background())
	require.Len(outcomes, 3)
	assert.False(outcomes.HasErrors())
	assert.Equal(model.OutcomeKindWarning, outcomes[2].Kind)

	require.NoError(env.engine.Deploy(context.Background(), 3310, "root"))
	outcomes = env.engine.Check(context.Background())
	assert.Equal(model.OutcomeKindOK, outcomes[2].Kind)
}

func TestEngineProvisionerFailures(t *testing.T) {
	errTransport := errors.New("provisioning tool could not be executed")
	startFailure := model.Outcomes{{Kind: model.OutcomeKindError, Message: "port 3310 in use"}}

	tests := map[string]struct {
		mock      func(m *provisioningmock.MockProvisioner)
		run       func(ctx context.Context, e *mysql.Engine) error
		expErrIs  error
		expErr    bool
		expSleeps int
	}{
		"A start transport error should fail without retrying.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StartSandbox", mock.Anything, mock.Anything).Once().Return(nil, errTransport)
			},
			run:      func(ctx context.Context, e *mysql.Engine) error { return e.Start(ctx, 3310) },
			expErr:   true,
			expErrIs: errTransport,
		},

		"Start error outcomes should be retried until the start works.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StartSandbox", mock.Anything, mock.Anything).Twice().Return(startFailure, nil)
				m.On("StartSandbox", mock.Anything, mock.Anything).Once().Return(model.Outcomes{}, nil)
			},
			run:       func(ctx context.Context, e *mysql.Engine) error { return e.Start(ctx, 3310) },
			expSleeps: 2,
		},

		"Start error outcomes on every attempt should fail.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StartSandbox", mock.Anything, mock.Anything).Times(5).Return(startFailure, nil)
			},
			run:       func(ctx context.Context, e *mysql.Engine) error { return e.Start(ctx, 3310) },
			expErr:    true,
			expSleeps: 4,
		},

		"A stop transport error should fail.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StopSandbox", mock.Anything, mock.MatchedBy(func(r provisioning.Request) bool {
					return r.Port == 3310 && r.Password == "secret"
				})).Once().Return(nil, errTransport)
			},
			run:      func(ctx context.Context, e *mysql.Engine) error { return e.Stop(ctx, 3310, "secret") },
			expErr:   true,
			expErrIs: errTransport,
		},

		"Stop warnings should not fail.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StopSandbox", mock.Anything, mock.Anything).Once().Return(model.Outcomes{{Kind: model.OutcomeKindWarning, Message: "slow shutdown"}}, nil)
			},
			run: func(ctx context.Context, e *mysql.Engine) error { return e.Stop(ctx, 3310, "secret") },
		},

		"A restart should not start when the stop fails.": {
			mock: func(m *provisioningmock.MockProvisioner) {
				m.On("StopSandbox", mock.Anything, mock.Anything).Once().Return(nil, errTransport)
			},
			run:      func(ctx context.Context, e *mysql.Engine) error { return e.Restart(ctx, 3310, "secret") },
			expErr:   true,
			expErrIs: errTransport,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mProv := provisioningmock.NewMockProvisioner(t)
			test.mock(mProv)
			sleeper := &wait.Recorder{}

			engine, err := mysql.NewEngine(mysql.EngineConfig{
				SandboxDir:  t.TempDir(),
				Gate:        replay.NewGate(replay.ModeDirect),
				Provisioner: mProv,
				Probe:       &testProbe{},
				Opener:      &testOpener{version: "8.0.36"},
				Sleep:       sleeper.Sleep,
			})
			require.NoError(t, err)

			err = test.run(context.Background(), engine)
			if test.expErr {
				require.Error(t, err)
				if test.expErrIs != nil {
					assert.ErrorIs(t, err, test.expErrIs)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, sleeper.Slept, test.expSleeps)
		})
	}
}
