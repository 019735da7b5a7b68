package tunnel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"
	"unicode"

	"bsprep/pkg/logging"
)

const (
	// ReadyMarker is printed by the tunnel binary once the tunnel is up.
	ReadyMarker = "You can now access your local server(s) in our remote browser"
	// ErrorMarker prefixes fatal errors printed by the tunnel binary.
	ErrorMarker = "*** Error:"
)

// ProcessBinding runs the tunnel binary as a child process in its own
// process group.
type ProcessBinding struct {
	binary string

	mu      sync.Mutex
	pid     int
	running bool
	exited  chan struct{}
}

// NewProcessBinding creates a binding for the tunnel binary at path.
func NewProcessBinding(binary string) *ProcessBinding {
	return &ProcessBinding{binary: binary}
}

// Args renders tunnel options as command line flags. Option names are
// converted from camelCase to kebab-case; "true" becomes a bare flag and
// "false" drops the flag.
func Args(opts map[string]string) []string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// key goes first, matching the binary's usage line
	args := []string{}
	if v, ok := opts["key"]; ok {
		args = append(args, "--key", v)
	}
	for _, k := range keys {
		if k == "key" {
			continue
		}
		v := opts[k]
		flag := "--" + kebab(k)
		switch strings.ToLower(v) {
		case "true":
			args = append(args, flag)
		case "false":
		default:
			args = append(args, flag, v)
		}
	}
	return args
}

func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Start spawns the binary. done is called once: with nil when the readiness
// marker is seen, or with an error when the binary reports one or exits first.
func (p *ProcessBinding) Start(opts map[string]string, done func(error)) {
	var once sync.Once
	report := func(err error) { once.Do(func() { done(err) }) }

	cmd := exec.Command(p.binary, Args(opts)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = os.Environ()

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		report(fmt.Errorf("stdout pipe for tunnel: %w", err))
		return
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		stdoutPipe.Close()
		report(fmt.Errorf("stderr pipe for tunnel: %w", err))
		return
	}

	if err := cmd.Start(); err != nil {
		report(fmt.Errorf("failed to start %s: %w", p.binary, err))
		return
	}

	exited := make(chan struct{})
	p.mu.Lock()
	p.pid = cmd.Process.Pid
	p.running = true
	p.exited = exited
	p.mu.Unlock()

	logging.Debug(subsystem, "Started %s (PID %d)", p.binary, cmd.Process.Pid)

	var output sync.WaitGroup
	output.Add(2)
	go func() {
		defer output.Done()
		p.scanStdout(stdoutPipe, report)
	}()
	go func() {
		defer output.Done()
		scanner := bufio.NewScanner(stderrPipe)
		for scanner.Scan() {
			logging.Debug(subsystem, "[STDERR] %s", scanner.Text())
		}
	}()

	go func() {
		output.Wait()
		err := cmd.Wait()

		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(exited)

		if err != nil {
			report(fmt.Errorf("tunnel exited before it was ready: %w", err))
		} else {
			report(errors.New("tunnel exited before it was ready"))
		}
	}()
}

func (p *ProcessBinding) scanStdout(r io.Reader, report func(error)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		logging.Debug(subsystem, "[STDOUT] %s", line)
		switch {
		case strings.Contains(line, ReadyMarker):
			report(nil)
		case strings.Contains(line, ErrorMarker):
			msg := strings.TrimSpace(line[strings.Index(line, ErrorMarker)+len(ErrorMarker):])
			report(errors.New(msg))
		}
	}
}

// Stop sends SIGTERM to the tunnel's process group and calls done once the
// process has exited.
func (p *ProcessBinding) Stop(done func(error)) {
	p.mu.Lock()
	pid, running, exited := p.pid, p.running, p.exited
	p.mu.Unlock()

	if !running {
		done(nil)
		return
	}

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		done(fmt.Errorf("failed to signal tunnel process %d: %w", pid, err))
		return
	}

	go func() {
		<-exited
		done(nil)
	}()
}

// IsRunning reports whether the tunnel process is alive.
func (p *ProcessBinding) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// PID returns the tunnel process id, or 0 before Start.
func (p *ProcessBinding) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}
