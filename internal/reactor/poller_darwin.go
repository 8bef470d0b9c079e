//go:build darwin

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// kqueuePoller implements platformPoller using kqueue. Adapted from the
// event loop's FastPoller (poller_darwin.go), trimmed to the map-based
// bookkeeping shared with poller_linux.go instead of the fixed-size,
// cache-line-padded array the event loop uses for its hot path - this
// reactor watches a handful of ZMQ_FDs per process, not hundreds of
// thousands of sockets, so the extra allocation-avoidance machinery
// would be unexercised weight.
type kqueuePoller struct {
	kq       int
	eventBuf [128]unix.Kevent_t

	mu  sync.RWMutex
	fds map[int]fdEntry
}

func newPlatformPoller() platformPoller {
	return &kqueuePoller{fds: make(map[int]fdEntry)}
}

func (p *kqueuePoller) init() error {
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	unix.CloseOnExec(kq)
	p.kq = kq
	return nil
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.kq)
}

func (p *kqueuePoller) registerFD(fd int, events IOEvents, cb Callback) error {
	p.mu.Lock()
	if _, exists := p.fds[fd]; exists {
		p.mu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{cb: cb, events: events}
	p.mu.Unlock()

	kevents := eventsToKevents(fd, events, unix.EV_ADD|unix.EV_ENABLE)
	if len(kevents) > 0 {
		if _, err := unix.Kevent(p.kq, kevents, nil, nil); err != nil {
			p.mu.Lock()
			delete(p.fds, fd)
			p.mu.Unlock()
			return err
		}
	}
	return nil
}

func (p *kqueuePoller) unregisterFD(fd int) error {
	p.mu.Lock()
	entry, exists := p.fds[fd]
	if !exists {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	delete(p.fds, fd)
	p.mu.Unlock()

	kevents := eventsToKevents(fd, entry.events, unix.EV_DELETE)
	if len(kevents) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

func (p *kqueuePoller) modifyFD(fd int, events IOEvents) error {
	p.mu.Lock()
	entry, exists := p.fds[fd]
	if !exists {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	old := entry.events
	entry.events = events
	p.fds[fd] = entry
	p.mu.Unlock()

	var kevents []unix.Kevent_t
	kevents = append(kevents, eventsToKevents(fd, old, unix.EV_DELETE)...)
	kevents = append(kevents, eventsToKevents(fd, events, unix.EV_ADD|unix.EV_ENABLE)...)
	if len(kevents) == 0 {
		return nil
	}
	_, err := unix.Kevent(p.kq, kevents, nil, nil)
	return err
}

func (p *kqueuePoller) wait(timeoutMs int) (int, error) {
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64(timeoutMs%1000) * 1_000_000,
		}
	}

	n, err := unix.Kevent(p.kq, nil, p.eventBuf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Ident)
		p.mu.RLock()
		entry, ok := p.fds[fd]
		p.mu.RUnlock()
		if !ok || entry.cb == nil {
			continue
		}
		var ev IOEvents
		switch p.eventBuf[i].Filter {
		case unix.EVFILT_READ:
			ev = EventRead
		case unix.EVFILT_WRITE:
			ev = EventWrite
		}
		if ev != 0 {
			entry.cb(ev)
		}
	}
	return n, nil
}

func eventsToKevents(fd int, events IOEvents, flags uint16) []unix.Kevent_t {
	var kevents []unix.Kevent_t
	if events&EventRead != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags,
		})
	}
	if events&EventWrite != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags,
		})
	}
	return kevents
}
