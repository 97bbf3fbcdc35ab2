package lib_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/dbsandbox/pkg/lib"
)

// This example shows how to create a client using the fake provisioner for testing.
func Example_testing() {
	ctx := context.Background()

	// Use a temp directory and the fake provisioner for testing.
	dir, err := os.MkdirTemp("", "dbsandbox-example-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		SandboxDir:  filepath.Join(dir, "sandboxes"),
		DBPath:      filepath.Join(dir, "dbsandbox.db"),
		Provisioner: lib.ProvisionerTypeFake,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Deploy a sandbox.
	sb, err := client.DeploySandbox(ctx, 3310, "root")
	if err != nil {
		panic(err)
	}

	fmt.Printf("Deployed: %d (status: %s)\n", sb.Port, sb.Status)

	// Output:
	// Deployed: 3310 (status: running)
}

// This example shows the full sandbox lifecycle: deploy, configure, restart, kill, destroy.
func Example_lifecycle() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "dbsandbox-example-lifecycle-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		SandboxDir:  dir,
		Provisioner: lib.ProvisionerTypeFake,
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	// Deploy.
	if _, err := client.DeploySandbox(ctx, 3310, "root"); err != nil {
		panic(err)
	}

	// Configure and restart so the change is applied.
	if err := client.ChangeSandboxConf(ctx, 3310, "log_bin=binlog"); err != nil {
		panic(err)
	}
	sb, err := client.RestartSandbox(ctx, 3310, "root")
	if err != nil {
		panic(err)
	}
	fmt.Printf("Restarted: %d (status: %s)\n", sb.Port, sb.Status)

	lines, err := client.GrepFile(client.GetSandboxConfPath(3310), "log_bin")
	if err != nil {
		panic(err)
	}
	fmt.Printf("Config: %v\n", lines)

	// Kill.
	sb, err = client.KillSandbox(ctx, 3310)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Killed: %d (status: %s)\n", sb.Port, sb.Status)

	// Destroy.
	if err := client.DestroySandbox(ctx, 3310); err != nil {
		panic(err)
	}

	_, err = client.GetSandbox(ctx, 3310)
	fmt.Printf("Destroyed: %t\n", errors.Is(err, lib.ErrNotFound))

	// Output:
	// Restarted: 3310 (status: running)
	// Config: [log_bin=binlog]
	// Killed: 3310 (status: killed)
	// Destroyed: true
}

// This example shows how failures are attributed to the test location.
func Example_failures() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "dbsandbox-example-failures-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	client, err := lib.New(ctx, lib.Config{
		SandboxDir:  dir,
		Provisioner: lib.ProvisionerTypeFake,
		FailureReporter: func(at lib.TestContext, msg string) {
			fmt.Printf("FAILED at %s: %s\n", at, msg)
		},
	})
	if err != nil {
		panic(err)
	}
	defer client.Close()

	client.SetTestExecutionContext("gr_recovery.js", 27)
	if err := client.WaitMemberState(ctx, 3310, "ONLINE"); errors.Is(err, lib.ErrNoSession) {
		client.Fail("there is no session to watch the member")
	}

	// Output:
	// FAILED at gr_recovery.js:27: there is no session to watch the member
}
