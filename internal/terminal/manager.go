package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
)

// Manager runs one editor session at a time inside a PTY so the
// dashboard can embed a terminal editor over a block's backing file.
type Manager struct {
	mu      sync.Mutex
	ptmx    *os.File
	cmd     *exec.Cmd
	onData  func(data []byte)
	onExit  func(blockID string)
	running bool
	blockID string
	editor  string
	// size to apply when the next session starts
	pendingCols uint16
	pendingRows uint16
	shellPath   string
}

// resolveEditor finds the absolute path for the editor binary.
// GUI apps don't inherit the shell's $PATH on macOS, so check
// common installation paths as a fallback.
func resolveEditor(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	candidates := []string{
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/run/current-system/sw/bin", name),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local/bin", name),
			filepath.Join(home, ".nix-profile/bin", name),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

// resolveShellPath captures the user's full login shell PATH so the
// editor's child processes can find installed tools.
func resolveShellPath() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/zsh"
	}
	out, err := exec.Command(shell, "-lc", "echo $PATH").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// New creates a terminal manager. onData receives raw PTY output,
// onExit fires with the block id when the editor process ends.
func New(onData func(data []byte), onExit func(blockID string)) *Manager {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}
	return &Manager{
		onData:      onData,
		onExit:      onExit,
		editor:      resolveEditor(editor),
		pendingCols: 80,
		pendingRows: 24,
		shellPath:   resolveShellPath(),
	}
}

// OpenBlockFile starts the editor on the block's backing file.
// An already-running session is closed first.
func (m *Manager) OpenBlockFile(blockID, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.closeInternal()
	}

	cmd := exec.Command(m.editor, filePath)

	env := os.Environ()
	if m.shellPath != "" {
		replaced := false
		for i, e := range env {
			if strings.HasPrefix(e, "PATH=") {
				env[i] = "PATH=" + m.shellPath
				replaced = true
				break
			}
		}
		if !replaced {
			env = append(env, "PATH="+m.shellPath)
		}
	}
	env = append(env,
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	cmd.Env = env

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: m.pendingCols,
		Rows: m.pendingRows,
	})
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.running = true
	m.blockID = blockID

	go func() {
		buf := make([]byte, 32768)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				if m.onData != nil {
					m.onData(data)
				}
			}
			if err != nil {
				break
			}
		}

		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		if m.onExit != nil {
			m.onExit(blockID)
		}
	}()

	return nil
}

// Write sends input data to the PTY (keystrokes from xterm.js).
func (m *Manager) Write(data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.ptmx == nil {
		return fmt.Errorf("no active terminal session")
	}

	_, err := io.WriteString(m.ptmx, data)
	return err
}

// Resize updates the PTY window size.
func (m *Manager) Resize(cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pendingCols = cols
	m.pendingRows = rows

	if !m.running || m.ptmx == nil {
		return nil
	}

	return pty.Setsize(m.ptmx, &pty.Winsize{
		Cols: cols,
		Rows: rows,
	})
}

// EditingBlock returns the id of the block being edited, or "" when
// no session is active.
func (m *Manager) EditingBlock() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return ""
	}
	return m.blockID
}

// Close ends the current session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeInternal()
}

func (m *Manager) closeInternal() {
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
		m.cmd.Wait()
		m.cmd = nil
	}
	m.running = false
	m.blockID = ""
}
