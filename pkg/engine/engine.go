// Package engine is a reference instrumentation engine: it runs the observed
// program under a Delve headless server, single-steps it, and reports every
// executed conditional branch to a handler. Anything able to call the
// instrumentation callback once per branch can stand in for it; the recorder
// core never imports this package.
//
// Single-stepping over RPC is orders of magnitude slower than in-process
// instrumentation. The engine is meant for short runs and for validating
// traces, not for production-scale capture.
package engine

import (
	"fmt"
	"net"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-delve/delve/service/rpc2"

	"github.com/willibrandon/BranchTrace/pkg/recorder"
)

// Engine wraps a Delve RPC client session, managing the underlying dlv
// process.
type Engine struct {
	client  *rpc2.RPCClient
	target  string    // target binary path
	dlvCmd  *exec.Cmd // the running 'dlv exec' command
	listen  string    // address dlv is listening on
	decoder *decoder
}

// findFreePort finds an available TCP port on localhost.
func findFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// New launches a Delve headless server for the target with the given command
// line arguments and connects via RPC. The target starts stopped at its
// entry point; Run drives it to completion.
func New(targetPath string, args []string) (*Engine, error) {
	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %s: %v", targetPath, err)
	}

	port, err := findFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to find free port for delve: %v", err)
	}
	listenAddr := "localhost:" + strconv.Itoa(port)

	cmdArgs := []string{
		"exec", absPath,
		"--headless",
		"--listen=" + listenAddr,
		"--api-version=2",
		"--accept-multiclient",
	}
	if len(args) > 0 {
		cmdArgs = append(cmdArgs, "--")
		cmdArgs = append(cmdArgs, args...)
	}

	dlvCmd := exec.Command("dlv", cmdArgs...)
	setupProcAttr(dlvCmd)

	if err := dlvCmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start delve process: %v", err)
	}

	// Wait a moment for the server to initialize
	time.Sleep(500 * time.Millisecond)

	client := rpc2.NewClient(listenAddr)
	if _, err := client.GetState(); err != nil {
		_ = dlvCmd.Process.Kill()
		_, _ = dlvCmd.Process.Wait()
		return nil, fmt.Errorf("failed to connect to delve server at %s: %v", listenAddr, err)
	}

	e := &Engine{
		client: client,
		target: absPath,
		dlvCmd: dlvCmd,
		listen: listenAddr,
	}
	e.decoder = newDecoder(e.readMemory)
	return e, nil
}

// Target returns the absolute path of the observed binary.
func (e *Engine) Target() string {
	return e.target
}

func (e *Engine) readMemory(addr uint64, n int) ([]byte, error) {
	// The second result reports the target's endianness; x86 decode only
	// needs the raw bytes.
	data, _, err := e.client.ExamineMemory(addr, n)
	return data, err
}

// Run single-steps the target to completion, invoking the callback once per
// executed conditional branch with a fall-through path. The taken outcome is
// observed by comparing the post-step PC with the decoded branch target.
// Returns the target's exit status.
func (e *Engine) Run(onBranch recorder.HandlerFunc) (int, error) {
	for {
		state, err := e.client.GetState()
		if err != nil {
			if code, ok := exitStatus(err); ok {
				return code, nil
			}
			return -1, fmt.Errorf("failed to get state: %v", err)
		}
		if state.Exited {
			return state.ExitStatus, nil
		}
		if state.CurrentThread == nil {
			return -1, fmt.Errorf("no current thread")
		}
		pc := state.CurrentThread.PC

		bi, isBranch, err := e.decoder.branchAt(pc)
		if err != nil {
			// Unreadable code memory; step over and keep going.
			isBranch = false
		}

		next, err := e.client.StepInstruction(false)
		if err != nil {
			if code, ok := exitStatus(err); ok {
				return code, nil
			}
			return -1, fmt.Errorf("step at %#x failed: %v", pc, err)
		}
		if isBranch {
			taken := true
			if next.CurrentThread != nil {
				taken = next.CurrentThread.PC == bi.target
			}
			onBranch(pc, bi.target, taken)
		}
		if next.Exited {
			return next.ExitStatus, nil
		}
	}
}

// exitStatus recognizes Delve's process-exited error and extracts the
// target's exit code from it.
func exitStatus(err error) (int, bool) {
	msg := err.Error()
	if !strings.Contains(msg, "has exited with status") {
		return 0, false
	}
	var pid, code int
	if _, serr := fmt.Sscanf(msg, "Process %d has exited with status %d", &pid, &code); serr != nil {
		return 0, true
	}
	return code, true
}

// Close terminates the connection and the Delve process together with the
// observed program.
func (e *Engine) Close() error {
	var closeErr error
	if e.client != nil {
		if err := e.client.Disconnect(false); err != nil {
			closeErr = fmt.Errorf("failed to disconnect delve client: %v", err)
		}
		e.client = nil
	}
	if e.dlvCmd != nil && e.dlvCmd.Process != nil {
		killProcessGroup(e.dlvCmd)
		if _, err := e.dlvCmd.Process.Wait(); err != nil &&
			err.Error() != "os: process already finished" && closeErr == nil {
			closeErr = fmt.Errorf("failed to wait for delve process: %v", err)
		}
		e.dlvCmd = nil
	}
	return closeErr
}
