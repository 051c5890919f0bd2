package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

const sampleCSV = "meeting_id,content\nM1,https://x/a.png\nM2,https://x/b.png"

// gatedAnalyzer answers per image reference. A reference with a gate blocks
// until the gate is closed.
type gatedAnalyzer struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{
		replies: map[string]string{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
	}
}

func (a *gatedAnalyzer) gate(ref string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch := make(chan struct{})
	a.gates[ref] = ch
	return ch
}

func (a *gatedAnalyzer) Analyze(ctx context.Context, ref string) (string, error) {
	a.mu.Lock()
	a.calls = append(a.calls, ref)
	gate := a.gates[ref]
	reply := a.replies[ref]
	err := a.errs[ref]
	a.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return reply, err
}

func sequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
