package conventions

import (
	"path/filepath"
	"strconv"
)

const (
	// DefaultDataDir is the default dbsandbox data directory name (relative to home).
	DefaultDataDir = ".dbsandbox"
	// SandboxesDir is the subdirectory holding every sandbox and the boilerplate.
	SandboxesDir = "sandboxes"
	// DBFile is the registry database filename.
	DBFile = "dbsandbox.db"

	// BoilerplateDir is the name of the shared template sandbox directory.
	BoilerplateDir = "myboilerplate"
	// VersionFile is the sidecar file holding the server version a boilerplate was built with.
	VersionFile = "version.txt"

	// Sandbox-level files.

	// ConfigFile is the server configuration filename.
	ConfigFile = "my.cnf"
	// DataDir is the server data directory name.
	DataDir = "sandboxdata"
	// ServerBinary is the server executable name, linked instead of copied on clone.
	ServerBinary = "mysqld"
	// SecureFilesDir is the secure_file_priv directory name.
	SecureFilesDir = "mysql-files"

	// Data dir files.

	// ErrorLogFile is the server error log filename.
	ErrorLogFile = "error.log"
	// GeneralLogFile is the server general log filename.
	GeneralLogFile = "general.log"
	// AutoConfigFile holds the server generated UUID.
	AutoConfigFile = "auto.cnf"
	// SocketFile is the classic protocol socket filename.
	SocketFile = "mysqld.sock"
	// XSocketFile is the X protocol socket filename.
	XSocketFile = "mysqlx.sock"
	// SocketLockFile is held by the server while it owns the socket.
	SocketLockFile = "mysqld.sock.lock"
	// IBDataFile is the InnoDB system tablespace, write locked while the server runs.
	IBDataFile = "ibdata1"

	// ServerIDOffset is added to the port to get a unique server_id.
	ServerIDOffset = 12345
	// ExtendedPortFactor multiplies the port to get the X protocol port.
	ExtendedPortFactor = 10
	// DefaultBoilerplatePort is used to build the boilerplate when no default ports are configured.
	DefaultBoilerplatePort = 3300
)

// SandboxDir returns the base directory for a specific sandbox.
func SandboxDir(sandboxRoot string, port int) string {
	return filepath.Join(sandboxRoot, strconv.Itoa(port))
}

// SandboxFilePath returns the full path to a file inside a sandbox base directory.
func SandboxFilePath(sandboxRoot string, port int, filename string) string {
	return filepath.Join(SandboxDir(sandboxRoot, port), filename)
}

// ConfigPath returns the path to a sandbox's configuration file.
func ConfigPath(sandboxRoot string, port int) string {
	return SandboxFilePath(sandboxRoot, port, ConfigFile)
}

// DataDirPath returns the path to a sandbox's server data directory.
func DataDirPath(sandboxRoot string, port int) string {
	return SandboxFilePath(sandboxRoot, port, DataDir)
}

// ErrorLogPath returns the path to a sandbox's error log.
func ErrorLogPath(sandboxRoot string, port int) string {
	return filepath.Join(DataDirPath(sandboxRoot, port), ErrorLogFile)
}

// PIDFilePath returns the path to a sandbox's PID file.
func PIDFilePath(sandboxRoot string, port int) string {
	return SandboxFilePath(sandboxRoot, port, strconv.Itoa(port)+".pid")
}

// BoilerplatePath returns the path to the boilerplate directory.
func BoilerplatePath(sandboxRoot string) string {
	return filepath.Join(sandboxRoot, BoilerplateDir)
}

// ServerID returns the server_id assigned to a sandbox.
func ServerID(port int) int { return port + ServerIDOffset }

// ExtendedPort returns the X protocol port assigned to a sandbox.
func ExtendedPort(port int) int { return port * ExtendedPortFactor }

// ConfPath formats a path for a config file value, the server expects forward slashes on every platform.
func ConfPath(path string) string { return filepath.ToSlash(path) }
