package midi

import (
	"context"
	"slices"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"

	"go-chordbox/debug"
)

// DeviceManager handles hot-plug of keyboards. It watches input ports whose
// name contains match and merges their key presses into one channel.
type DeviceManager struct {
	match     string
	keyboards map[string]*Keyboard
	mu        sync.RWMutex
	events    chan DeviceEvent
	notes     chan NoteEvent
	pollRate  time.Duration
}

// NewDeviceManager watches ports matching match (substring, case-insensitive)
func NewDeviceManager(match string) *DeviceManager {
	return &DeviceManager{
		match:     match,
		keyboards: make(map[string]*Keyboard),
		events:    make(chan DeviceEvent, 16),
		notes:     make(chan NoteEvent, 64),
		pollRate:  time.Second,
	}
}

// Events returns a channel of device connect/disconnect events. Closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Notes returns key presses from every connected keyboard
func (dm *DeviceManager) Notes() <-chan NoteEvent {
	return dm.notes
}

// Keyboards returns the IDs of connected keyboards, sorted
func (dm *DeviceManager) Keyboards() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.keyboards))
	for id := range dm.keyboards {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	inPorts, _, err := Ports(ctx)
	if err != nil {
		// hung scan, try again next tick
		debug.Log("midi", "scan: %v", err)
		return
	}
	debug.LogEvery(30, "midi", "scan: %d input ports", len(inPorts))

	byName := make(map[string]drivers.In, len(inPorts))
	names := make([]string, 0, len(inPorts))
	for _, p := range inPorts {
		byName[p.String()] = p
		names = append(names, p.String())
	}

	dm.mu.RLock()
	known := make(map[string]bool, len(dm.keyboards))
	for id := range dm.keyboards {
		known[id] = true
	}
	dm.mu.RUnlock()

	added, removed := diffPorts(known, names, dm.match)

	for _, id := range added {
		kb, err := OpenKeyboard(byName[id])
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}
		dm.mu.Lock()
		dm.keyboards[id] = kb
		dm.mu.Unlock()

		go dm.forward(kb)
		dm.emit(DeviceEvent{Type: DeviceConnected, Keyboard: kb, ID: id})
		debug.Log("midi", "keyboard connected: %s", id)
	}

	for _, id := range removed {
		dm.mu.Lock()
		kb := dm.keyboards[id]
		delete(dm.keyboards, id)
		dm.mu.Unlock()

		if kb != nil {
			kb.Close()
		}
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
		debug.Log("midi", "keyboard disconnected: %s", id)
	}
}

// diffPorts compares the ports seen now with the connected keyboards. An empty
// match watches nothing.
func diffPorts(known map[string]bool, seen []string, match string) (added, removed []string) {
	present := make(map[string]bool, len(seen))
	for _, name := range seen {
		if match == "" || present[name] || !matchPort(name, match) {
			continue
		}
		present[name] = true
		if !known[name] {
			added = append(added, name)
		}
	}
	for id := range known {
		if !present[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func (dm *DeviceManager) forward(kb *Keyboard) {
	for e := range kb.Notes() {
		select {
		case dm.notes <- e:
		default:
		}
	}
}

func (dm *DeviceManager) emit(e DeviceEvent) {
	select {
	case dm.events <- e:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, kb := range dm.keyboards {
		kb.Close()
	}
	dm.keyboards = make(map[string]*Keyboard)
}
