package app

import (
	"context"
	"log"
	"sync"
	"time"

	"oilhub/internal/persist"
	"oilhub/internal/store"
)

// syncer is the debounced persistence writer. Every published revision marks
// it dirty; a save runs only after the debounce window passes with no further
// mutation, so a burst of edits costs one write. A failed save keeps the
// dirty flag, and the next tick retries with the newest revision.
type syncer struct {
	snapshots persist.SnapshotStore
	debounce  time.Duration

	mu        sync.Mutex
	latest    *store.Snapshot
	dirtyAt   time.Time
	dirty     bool
	saving    bool
	lastSaved time.Time
	lastErr   error

	wake chan struct{}
	done chan struct{}
}

func newSyncer(snapshots persist.SnapshotStore, debounce time.Duration) *syncer {
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}
	return &syncer{
		snapshots: snapshots,
		debounce:  debounce,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// start runs the writer loop until ctx is cancelled.
func (y *syncer) start(ctx context.Context) {
	go y.loop(ctx)
}

// markDirty records a new revision to be saved after the debounce window.
func (y *syncer) markDirty(s *store.Snapshot) {
	y.mu.Lock()
	y.latest = s
	y.dirty = true
	y.dirtyAt = time.Now()
	y.mu.Unlock()

	select {
	case y.wake <- struct{}{}:
	default:
	}
}

func (y *syncer) loop(ctx context.Context) {
	defer close(y.done)
	timer := time.NewTimer(y.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Last chance write with a short independent deadline.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := y.flush(flushCtx); err != nil {
				log.Printf("sync: final flush failed: %v", err)
			}
			cancel()
			return
		case <-y.wake:
			timer.Reset(y.debounce)
		case <-timer.C:
			y.saveIfDue(ctx)
		}
	}
}

// saveIfDue writes the latest revision when the debounce window has elapsed.
func (y *syncer) saveIfDue(ctx context.Context) {
	y.mu.Lock()
	if !y.dirty {
		y.mu.Unlock()
		return
	}
	if wait := y.debounce - time.Since(y.dirtyAt); wait > 0 {
		y.mu.Unlock()
		time.AfterFunc(wait, func() {
			select {
			case y.wake <- struct{}{}:
			default:
			}
		})
		return
	}
	snap := y.latest
	y.dirty = false
	y.saving = true
	y.mu.Unlock()

	err := y.snapshots.Save(ctx, snap)

	y.mu.Lock()
	y.saving = false
	if err != nil {
		y.lastErr = err
		y.dirty = true // retry with whatever is latest by then
		log.Printf("sync: save failed: %v", err)
	} else {
		y.lastErr = nil
		y.lastSaved = time.Now()
	}
	y.mu.Unlock()

	if err != nil {
		time.AfterFunc(y.debounce, func() {
			select {
			case y.wake <- struct{}{}:
			default:
			}
		})
	}
}

// flush writes the latest revision immediately if anything is pending.
func (y *syncer) flush(ctx context.Context) error {
	y.mu.Lock()
	if !y.dirty {
		y.mu.Unlock()
		return nil
	}
	snap := y.latest
	y.dirty = false
	y.mu.Unlock()

	if err := y.snapshots.Save(ctx, snap); err != nil {
		y.mu.Lock()
		y.dirty = true
		y.lastErr = err
		y.mu.Unlock()
		return err
	}
	y.mu.Lock()
	y.lastErr = nil
	y.lastSaved = time.Now()
	y.mu.Unlock()
	return nil
}

// state reports the writer's current status for the sync endpoint.
func (y *syncer) state() SyncState {
	y.mu.Lock()
	defer y.mu.Unlock()

	st := SyncState{Status: SyncIdle, LastSaved: y.lastSaved}
	switch {
	case y.saving:
		st.Status = SyncSaving
	case y.lastErr != nil:
		st.Status = SyncError
		st.LastError = y.lastErr.Error()
	case y.dirty:
		st.Status = SyncPending
	}
	return st
}
