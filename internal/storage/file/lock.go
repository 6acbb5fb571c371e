package file

import (
	"path/filepath"
	"sync"
)

// locks maps a cleaned absolute file path to the RWMutex guarding it.
// Every Repository opened on the same path in this process shares one lock.
var locks sync.Map

func lockFor(path string) *sync.RWMutex {
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	mu, _ := locks.LoadOrStore(filepath.Clean(key), &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}
