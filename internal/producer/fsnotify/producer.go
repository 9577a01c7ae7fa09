// Package fsnotify implements the concrete OS event producer (spec §6's
// "Event producer interface (consumed)") using
// github.com/fsnotify/fsnotify. It translates raw fsnotify.Event values
// into event.Event, classifying processability from the filename
// extension (event.IsProcessable). This component sits entirely outside
// the core's specified scope but a runnable host needs some concrete
// notification source; fsnotify is already an indirect dependency of the
// teacher's driver module, promoted here to direct and exercised.
package fsnotify

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corburn/logstatsd/internal/event"
)

// Callback receives each translated event. It must not block (ING-001,
// ING-002). A panicking callback is recovered per-event by safeDispatch
// and reported to errorSink rather than crashing the watch loop.
type Callback func(event.Event)

// Producer watches one directory (no subdirectory recursion, per the
// core's non-goals) and delivers Created/Modified/Deleted events. It never
// emits Renamed: a rename is delivered as Deleted at the old path (see
// dispatch).
type Producer struct {
	watchPath string
	watcher   *fsnotify.Watcher
	errorSink func(error)

	done chan struct{}
}

// New constructs a Producer for watchPath. errorSink receives watcher
// errors (the producer never raises from its callbacks).
func New(watchPath string, errorSink func(error)) (*Producer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(watchPath); err != nil {
		w.Close()
		return nil, err
	}
	return &Producer{
		watchPath: watchPath,
		watcher:   w,
		errorSink: errorSink,
		done:      make(chan struct{}),
	}, nil
}

// Start delivers events to cb until Stop is called. Runs its dispatch
// loop in its own goroutine; Start itself returns immediately.
func (p *Producer) Start(cb Callback) {
	go p.loop(cb)
}

// Stop closes the underlying watcher, ending the dispatch loop.
func (p *Producer) Stop() {
	p.watcher.Close()
	<-p.done
}

func (p *Producer) loop(cb Callback) {
	defer close(p.done)

	for {
		select {
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			p.safeDispatch(ev, cb)
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			if err != nil && p.errorSink != nil {
				p.errorSink(err)
			}
		}
	}
}

// safeDispatch runs dispatch (and so the caller's callback) under a
// recover guard (spec §7): a panic in cb is turned into a diagnostic line
// via errorSink instead of crashing the watch loop, which continues on to
// the next event.
func (p *Producer) safeDispatch(ev fsnotify.Event, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			if p.errorSink != nil {
				p.errorSink(fmt.Errorf("recovered from panic dispatching %s: %v", ev.Name, r))
			}
		}
	}()
	p.dispatch(ev, cb)
}

// dispatch translates one fsnotify.Event. fsnotify reports a rename as a
// Rename at the old path followed by a separate Create at the new path
// (it does not pair the two), so a Rename here is surfaced as a Deleted:
// the subsequent Create, if any, is handled by the next event.
func (p *Producer) dispatch(ev fsnotify.Event, cb Callback) {
	now := time.Now()

	switch {
	case ev.Op&fsnotify.Create != 0:
		cb(event.New(event.Created, ev.Name, "", now, event.IsProcessable(ev.Name)))
	case ev.Op&fsnotify.Write != 0:
		cb(event.New(event.Modified, ev.Name, "", now, event.IsProcessable(ev.Name)))
	case ev.Op&fsnotify.Remove != 0:
		cb(event.New(event.Deleted, ev.Name, "", now, event.IsProcessable(ev.Name)))
	case ev.Op&fsnotify.Rename != 0:
		cb(event.New(event.Deleted, ev.Name, "", now, event.IsProcessable(ev.Name)))
	}
}
