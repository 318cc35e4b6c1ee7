// Package hyperloglog wraps github.com/clarkduvall/hyperloglog with a
// mutex. The upstream implementation keeps its sparse representation in
// plain maps and is not safe for concurrent use.
package hyperloglog

import (
	"sync"

	"github.com/clarkduvall/hyperloglog"
)

// Hash64 is anything that can present itself as a 64-bit hash.
type Hash64 = hyperloglog.Hash64

type HyperLogLogPlus struct {
	mu sync.Mutex
	h  *hyperloglog.HyperLogLogPlus
}

func NewPlus(precision uint8) (*HyperLogLogPlus, error) {
	h, err := hyperloglog.NewPlus(precision)
	if err != nil {
		return nil, err
	}
	return &HyperLogLogPlus{h: h}, nil
}

func (w *HyperLogLogPlus) Add(item Hash64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.h.Add(item)
}

func (w *HyperLogLogPlus) Merge(other *HyperLogLogPlus) error {
	other.mu.Lock()
	defer other.mu.Unlock()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.h.Merge(other.h)
}

func (w *HyperLogLogPlus) Count() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.h.Count()
}
