package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RandomSource is the subset of dice.Source the engine module needs.
// Using a local interface keeps scripting free of game imports.
type RandomSource interface {
	Float64() float64
}

// vm is one loaded script set. An LState is single threaded, so every call
// holds mu.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel context.CancelFunc
	limit  int
}

// Manager owns one sandboxed LState per script set and exposes hook calls.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    RandomSource
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil; panics otherwise.
// Postcondition: Returns a non-nil Manager with no script sets loaded.
func NewManager(src RandomSource, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// Load loads path under key: every *.lua file when path is a directory, or
// the single file otherwise.
//
// Precondition: key must be non-empty.
// Postcondition: the VM is registered; returns error when path cannot be read
// or a script fails to load.
func (m *Manager) Load(key, path string, instLimit int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("scripting: reading %q for %q: %w", path, key, err)
	}
	if info.IsDir() {
		return m.LoadDir(key, path, instLimit)
	}
	return m.LoadFile(key, path, instLimit)
}

// LoadDir creates a sandboxed VM under key, registers the engine module, then
// executes every *.lua file in dir in lexicographic order. An existing VM
// under key is replaced.
//
// Precondition: key must be non-empty; dir must be a readable directory.
// Postcondition: the VM is registered; returns error on read or Lua load failure.
func (m *Manager) LoadDir(key, dir string, instLimit int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, key, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return m.load(key, files, instLimit)
}

// LoadFile creates a sandboxed VM under key from a single script file.
func (m *Manager) LoadFile(key, path string, instLimit int) error {
	return m.load(key, []string{path}, instLimit)
}

func (m *Manager) load(key string, files []string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range files {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.close()
	}
	m.vms[key] = &vm{L: L, cancel: cancel, limit: instLimit}
	m.mu.Unlock()
	m.logger.Info("scripting: loaded scripts", zap.String("key", key), zap.Int("files", len(files)))
	return nil
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.L.Close()
}

// CallJSON calls hook with payload converted by ToLua under a fresh
// instruction budget bounded by ctx, and converts the first return value back
// with FromLua. A Lua runtime error is logged at Warn level and returned so
// that callers can fall back.
//
// Postcondition: Returns (nil, nil) when the hook or VM is missing.
func (m *Manager) CallJSON(ctx context.Context, key, hook string, payload any) (any, error) {
	v := m.get(key)
	if v == nil {
		return nil, nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return nil, nil
	}
	cancel := Budget(v.L, ctx, v.limit)
	defer cancel()
	arg, err := ToLua(v.L, payload)
	if err != nil {
		return nil, err
	}
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("key", key),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return nil, fmt.Errorf("scripting: calling %q in %q: %w", hook, key, err)
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return FromLua(ret), nil
}

func (m *Manager) get(key string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vms[key]
}

// Close releases every VM.
//
// Postcondition: subsequent calls find no VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.vms {
		v.close()
		delete(m.vms, k)
	}
}
