package mapinfo

import (
	"context"
	"errors"
	"sync"
	"time"

	"starbank/internal/bank"
)

type fakeReader struct {
	mu        sync.Mutex
	scripts   map[string]string
	errs      map[string]error
	blocking  map[string]bool
	delays    map[string]time.Duration
	opened    []string
	extracted map[string]string
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		scripts:   make(map[string]string),
		errs:      make(map[string]error),
		blocking:  make(map[string]bool),
		delays:    make(map[string]time.Duration),
		extracted: make(map[string]string),
	}
}

func (f *fakeReader) OpenText(ctx context.Context, path, entryName string) (string, error) {
	f.mu.Lock()
	f.opened = append(f.opened, path)
	script, ok := f.scripts[path]
	err := f.errs[path]
	block := f.blocking[path]
	delay := f.delays[path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("entry not found: " + entryName)
	}
	return script, nil
}

func (f *fakeReader) ExtractEntry(_ context.Context, path, entryName, destPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[path]; err != nil {
		return err
	}
	f.extracted[destPath] = path + "!" + entryName
	return nil
}

type fakeProtection struct {
	mu        sync.Mutex
	protected map[string]bool
	err       error
	calls     []string
}

func (f *fakeProtection) IsProtected(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if f.err != nil {
		return false, f.err
	}
	return f.protected[path], nil
}

func (f *fakeProtection) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeBanks struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeBanks) Extract(script string) []bank.Record {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return []bank.Record{{Name: "Progress", Player: "1", Native: "BankLoad", Line: len(script)}}
}

func (f *fakeBanks) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
