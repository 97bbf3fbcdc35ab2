// Package lib provides a Go SDK for driving local MySQL server sandboxes
// from tests.
//
// Sandboxes are addressed by their port: every path, the server_id and the
// X protocol port (port*10) are derived from it. Servers are provisioned by
// an external tool and cloned from a shared boilerplate sandbox, which makes
// deploying many sandboxes much faster than initializing each one.
//
// # Quick Start
//
// Create a client, deploy a sandbox, tweak its configuration and restart it:
//
//	client, err := lib.New(ctx, lib.Config{
//	    ProvisionerCommand: "mysqlsh --py -f provision.py --",
//	    DefaultPorts:       []int{3310, 3320, 3330},
//	    ExpectedVersion:    "8.0.36",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.DeploySandbox(ctx, 3310, "root")
//	client.ChangeSandboxConf(ctx, 3310, "log_bin=binlog")
//	client.RestartSandbox(ctx, 3310, "root")
//	client.DestroySandbox(ctx, 3310)
//
// # Boilerplate
//
// The first deploy builds the boilerplate on the first default port. It is
// reused while the root password and the server version match, otherwise it
// is rebuilt. Set [Config].ReuseBoilerplate (or TEST_REUSE_SANDBOX_BOILERPLATE
// with [ConfigFromEnv]) to reuse the boilerplate left by a previous run.
//
// # Replay
//
// Tests can be recorded against real servers and replayed later without them.
// With [ReplayModeReplay] every sandbox operation is skipped except
// [Client.DestroySandbox], which always cleans the files. Configuration files
// and error logs are copied to and from [Config].SnapshotDir:
//
//	client.SnapshotSandboxConf(ctx, 3310)
//	client.BeginSnapshotSandboxErrorLog(ctx, 3310)
//	lines, _ := client.GrepFile(client.GetSandboxLogPath(3310), "*ERROR*")
//	client.EndSnapshotSandboxErrorLog(ctx, 3310)
//
// # Cluster Members
//
// Wait for a group replication member to reach a state through a session:
//
//	client.OpenSession(ctx, lib.SessionOpts{Port: 3310, Password: "root"})
//	err := client.WaitMemberState(ctx, 3320, "ONLINE,RECOVERING")
//	if errors.Is(err, lib.ErrTimeout) {
//	    // ...
//	}
//
// # Interactive Prompts
//
// Queue the prompts an interactive program is expected to show and their answers:
//
//	client.ExpectPassword("Please provide the password for 'root@localhost:3310': ", "root")
//	client.ExpectPrompt(lib.AnyPrompt, "y")
//	out, err := client.RunInteractive(ctx, []string{"mysqlsh", "root@localhost:3310"}, nil)
//
// # Health Checks
//
// Run preflight checks to verify the environment:
//
//	results, _ := client.Doctor(ctx)
//	for _, r := range results {
//	    fmt.Printf("%s (%s)\n", r.Message, r.Status)
//	}
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: The sandbox is not registered, only for registry
//     queries like [Client.GetSandbox]. Lifecycle operations work on any port.
//   - [ErrAlreadyExists]: A sandbox is already registered on the port.
//   - [ErrNotValid]: Invalid input or configuration.
//   - [ErrNoSession]: Waiting for a member without a session.
//   - [ErrTimeout]: A member never reached the expected state.
//   - [ErrSnapshotDirNotSet]: Recording or replaying without a snapshot dir.
//   - [ErrUnexpectedPrompt]: An interactive program showed an unexpected prompt.
//   - [ErrFatal]: The boilerplate could not be rebuilt, [Config].OnFatal is
//     called first and panics by default.
//
// # Testing
//
// Use [ProvisionerTypeFake] to write tests without a database installation,
// sandboxes are laid out on disk but no server runs:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    SandboxDir:  t.TempDir(),
//	    Provisioner: lib.ProvisionerTypeFake,
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. Sandbox
// operations share the boilerplate and are serialized.
package lib
