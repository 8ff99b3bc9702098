// Package console flips named debug flags from stdin or over the network.
package console

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var ErrUnknownFlag = errors.New("unknown debug flag")

// Builtin flag names.
const (
	Freeze    = "freeze"
	Wireframe = "wireframe"
	Stats     = "stats"
)

// Flags is a set of named booleans. It is safe for concurrent use.
type Flags struct {
	mu    sync.RWMutex
	flags map[string]bool
	hooks map[string][]func(bool)
}

func NewFlags(names ...string) *Flags {
	f := &Flags{
		flags: make(map[string]bool),
		hooks: make(map[string][]func(bool)),
	}
	for _, n := range names {
		f.flags[n] = false
	}
	return f
}

// DefaultFlags holds freeze, wireframe and stats.
func DefaultFlags() *Flags {
	return NewFlags(Freeze, Wireframe, Stats)
}

// Trigger flips flag name and returns its new value. Hooks run on the
// calling goroutine after the flag is updated.
func (f *Flags) Trigger(name string) (bool, error) {
	f.mu.Lock()
	v, ok := f.flags[name]
	if !ok {
		f.mu.Unlock()
		return false, errors.Wrapf(ErrUnknownFlag, "trigger %q", name)
	}
	v = !v
	f.flags[name] = v
	hooks := f.hooks[name]
	f.mu.Unlock()

	for _, h := range hooks {
		h(v)
	}
	return v, nil
}

func (f *Flags) Get(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.flags[name]
}

// OnChange registers fn to run whenever flag name is triggered.
func (f *Flags) OnChange(name string, fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[name] = append(f.hooks[name], fn)
}

func (f *Flags) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.flags))
	for n := range f.flags {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
