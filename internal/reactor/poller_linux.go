//go:build linux

package reactor

import (
	"sync"

	"golang.org/x/sys/unix"
)

// epollPoller implements platformPoller using epoll. Adapted from the
// event loop's FastPoller (poller_linux.go): direct fd-indexed lookup
// under an RWMutex, with callback dispatch copied out from under the
// lock so registration changes never block an in-flight callback.
type epollPoller struct {
	epfd     int
	eventBuf [128]unix.EpollEvent

	mu  sync.RWMutex
	fds map[int]fdEntry
}

type fdEntry struct {
	cb     Callback
	events IOEvents
}

func newPlatformPoller() platformPoller {
	return &epollPoller{fds: make(map[int]fdEntry)}
}

func (p *epollPoller) init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.epfd = epfd
	return nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}

func (p *epollPoller) registerFD(fd int, events IOEvents, cb Callback) error {
	p.mu.Lock()
	if _, exists := p.fds[fd]; exists {
		p.mu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{cb: cb, events: events}
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: eventsToEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		p.mu.Lock()
		delete(p.fds, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *epollPoller) unregisterFD(fd int) error {
	p.mu.Lock()
	if _, exists := p.fds[fd]; !exists {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	delete(p.fds, fd)
	p.mu.Unlock()

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) modifyFD(fd int, events IOEvents) error {
	p.mu.Lock()
	entry, exists := p.fds[fd]
	if !exists {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	entry.events = events
	p.fds[fd] = entry
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: eventsToEpoll(events), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

func (p *epollPoller) wait(timeoutMs int) (int, error) {
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		p.mu.RLock()
		entry, ok := p.fds[fd]
		p.mu.RUnlock()
		if ok && entry.cb != nil {
			entry.cb(epollToEvents(p.eventBuf[i].Events))
		}
	}
	return n, nil
}

func eventsToEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	return events
}
