package tunebridge

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// BackendRunner is the seam BackendClient invokes: it runs the backend
// client executable with the given arguments and returns captured stdout,
// or an error carrying stderr. Tests substitute a fake implementation.
type BackendRunner interface {
	Run(args []string) (stdout string, err error)
}

// execBackendRunner is the production BackendRunner: it shells out to the
// backend client binary located under <neutrinoPath>/bin.
type execBackendRunner struct {
	clientPath string
}

func (r *execBackendRunner) Run(args []string) (string, error) {
	cmd := exec.Command(r.clientPath, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := stdout.String()

	if err != nil {
		return "", &BackendIOError{Message: err.Error(), Stderr: stderr.String()}
	}
	if strings.Contains(out, "Error: ") || strings.Contains(out, "Recv failed: ") {
		return "", &BackendIOError{Message: "backend reported a failure", Stderr: firstOffendingLine(out)}
	}
	return out, nil
}

func firstOffendingLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Error: ") || strings.Contains(line, "Recv failed: ") {
			return line
		}
	}
	return out
}

// Engine owns the lifecycle of one backend install: the neutrino_path on
// disk, an optionally-running server subprocess, and serializes all
// synthesize calls through mu. One Engine instance == one server process;
// callers wanting parallel synthesis create multiple Engines.
type Engine struct {
	neutrinoPath string
	serverCmd    *exec.Cmd
	runner       BackendRunner

	mu sync.Mutex
}

// NewEngine validates that neutrinoPath contains bin/neutrino_server and
// bin/neutrino_client (platform executable suffix applied automatically)
// and returns an Engine with no server yet spawned.
func NewEngine(neutrinoPath string) (*Engine, error) {
	serverPath := backendBinaryPath(neutrinoPath, "neutrino_server")
	clientPath := backendBinaryPath(neutrinoPath, "neutrino_client")

	if _, err := os.Stat(serverPath); err != nil {
		return nil, &ConfigurationError{Path: serverPath, Message: "neutrino server executable not found"}
	}
	if _, err := os.Stat(clientPath); err != nil {
		return nil, &ConfigurationError{Path: clientPath, Message: "neutrino client executable not found"}
	}

	return &Engine{
		neutrinoPath: neutrinoPath,
		runner:       &execBackendRunner{clientPath: clientPath},
	}, nil
}

func backendBinaryPath(neutrinoPath, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(neutrinoPath, "bin", name)
}

// ensureServer lazily spawns the server process on first backend invocation.
func (e *Engine) ensureServer() error {
	if e.serverCmd != nil {
		return nil
	}
	serverPath := backendBinaryPath(e.neutrinoPath, "neutrino_server")
	cmd := exec.Command(serverPath)
	if err := cmd.Start(); err != nil {
		return &ConfigurationError{Path: serverPath, Message: fmt.Sprintf("failed to start backend server: %v", err)}
	}
	e.serverCmd = cmd
	return nil
}

// Invoke runs the backend client synchronously with the given positional
// arguments, spawning the server on first use. Callers hold mu across a
// whole synthesize() call, not per-Invoke, so Invoke itself does not lock.
func (e *Engine) Invoke(args []string) (string, error) {
	if err := e.ensureServer(); err != nil {
		return "", err
	}
	return e.runner.Run(args)
}

// Lock serializes one synthesize() call against all others on this Engine.
// Pair with defer e.Unlock().
func (e *Engine) Lock() { e.mu.Lock() }

// Unlock releases the serialization lock taken by Lock.
func (e *Engine) Unlock() { e.mu.Unlock() }

// Shutdown sends the client's "shutdown" command; if that fails, it logs the
// failure and kills the server child directly. Idempotent: safe to call when
// no server has been spawned, or more than once.
func (e *Engine) Shutdown() {
	if e.serverCmd == nil {
		return
	}
	if _, err := e.runner.Run([]string{"shutdown"}); err != nil {
		log.Printf("backend shutdown failed, killing server: %v", err)
		if e.serverCmd.Process != nil {
			_ = e.serverCmd.Process.Kill()
		}
	}
	_ = e.serverCmd.Wait()
	e.serverCmd = nil
}
