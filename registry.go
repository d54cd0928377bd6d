package udf

import (
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Binding)
)

// Register makes a function available by name to in-process hosts. Names
// are case-insensitive, as they are in SQL. It panics if the name is taken.
func Register(b Binding) {
	registryMu.Lock()
	defer registryMu.Unlock()
	key := strings.ToLower(b.Name())
	if _, dup := registry[key]; dup {
		panic("udf: Register called twice for function " + b.Name())
	}
	registry[key] = b
}

// Lookup returns the registered function, or (nil, false) if not found.
func Lookup(name string) (Binding, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[strings.ToLower(name)]
	return b, ok
}

// Functions returns all registered functions in name order.
func Functions() []Binding {
	registryMu.RLock()
	defer registryMu.RUnlock()
	list := make([]Binding, 0, len(registry))
	for _, b := range registry {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
