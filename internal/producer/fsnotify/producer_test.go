package fsnotify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corburn/logstatsd/internal/event"
)

type collector struct {
	mu     sync.Mutex
	events []event.Event
}

func (c *collector) add(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) snapshot() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Event, len(c.events))
	copy(out, c.events)
	return out
}

func TestProducerDeliversCreateAndWrite(t *testing.T) {
	dir := t.TempDir()
	p, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Stop()

	c := &collector{}
	p.Start(c.add)

	path := filepath.Join(dir, "a.log")
	if err := os.WriteFile(path, []byte("hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(c.snapshot()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	events := c.snapshot()
	if len(events) == 0 {
		t.Fatal("expected at least one event after creating a .log file")
	}
	for _, e := range events {
		if !e.Processable {
			t.Fatalf("expected .log file to be processable: %+v", e)
		}
	}
}

func TestProducerMarksNonLogFilesNonProcessable(t *testing.T) {
	dir := t.TempDir()
	p, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Stop()

	c := &collector{}
	p.Start(c.add)

	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(c.snapshot()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	events := c.snapshot()
	if len(events) == 0 {
		t.Fatal("expected at least one event after creating a file")
	}
	for _, e := range events {
		if e.Processable {
			t.Fatalf("expected .bin file to be non-processable: %+v", e)
		}
	}
}

func TestStopEndsDispatchLoop(t *testing.T) {
	dir := t.TempDir()
	p, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.Start(func(event.Event) {})
	p.Stop() // must return, not hang
}

func TestCallbackPanicIsRecoveredAndLoopContinues(t *testing.T) {
	dir := t.TempDir()

	var errMu sync.Mutex
	var errs []error
	errSink := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		errs = append(errs, err)
	}

	p, err := New(dir, errSink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer p.Stop()

	c := &collector{}
	first := true
	p.Start(func(e event.Event) {
		if first {
			first = false
			panic("boom")
		}
		c.add(e)
	})

	if err := os.WriteFile(filepath.Join(dir, "a.log"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.log"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(c.snapshot()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if len(c.snapshot()) == 0 {
		t.Fatal("expected the watch loop to keep dispatching events after a callback panic")
	}

	errMu.Lock()
	defer errMu.Unlock()
	if len(errs) == 0 {
		t.Fatal("expected the panic to be reported to errorSink")
	}
}

func TestNewFailsOnMissingDirectory(t *testing.T) {
	if _, err := New("/does/not/exist/anywhere", nil); err == nil {
		t.Fatal("expected an error watching a nonexistent directory")
	}
}
