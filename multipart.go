package zmqadapter

// Multipart is an ordered, owned sequence of Frames forming one logical
// MQ message. Per spec, length is not validated at construction time -
// Sink.Send, SinkStream.Send and Adapter.Send check for emptiness, returning
// ErrEmptyMultipart. This mirrors the design note that forbidding empty
// multiparts at construction would be strictly better, while keeping the
// type itself a plain, zero-invariant value, consistent with how the rest
// of this module treats data types as owned values threaded through the
// pipeline rather than shared/reference-counted.
type Multipart struct {
	frames []Frame
}

// NewMultipart builds a Multipart from zero or more frames, in the given
// (FIFO/send) order.
func NewMultipart(frames ...Frame) Multipart {
	mp := Multipart{frames: make([]Frame, len(frames))}
	copy(mp.frames, frames)
	return mp
}

// NewMultipartFromBytes is a convenience constructor for the common case
// of building a multipart directly from raw byte slices.
func NewMultipartFromBytes(parts ...[]byte) Multipart {
	mp := Multipart{frames: make([]Frame, len(parts))}
	for i, p := range parts {
		mp.frames[i] = Frame(p)
	}
	return mp
}

// Len returns the number of frames.
func (m *Multipart) Len() int { return len(m.frames) }

// IsEmpty reports whether the multipart has no frames.
func (m *Multipart) IsEmpty() bool { return len(m.frames) == 0 }

// Get returns the frame at index i, and whether i was in range.
func (m *Multipart) Get(i int) (Frame, bool) {
	if i < 0 || i >= len(m.frames) {
		return nil, false
	}
	return m.frames[i], true
}

// PushBack appends a frame to the end of the multipart.
func (m *Multipart) PushBack(f Frame) {
	m.frames = append(m.frames, f)
}

// PushFront prepends a frame to the start of the multipart. Adapter.Send
// does not use it: on a WouldBlock result from Adapter.trySendFrame it keeps
// the popped frame and retries that same frame, preserving order.
func (m *Multipart) PushFront(f Frame) {
	m.frames = append(m.frames, Frame(nil))
	copy(m.frames[1:], m.frames)
	m.frames[0] = f
}

// PopFront removes and returns the first frame, if any.
func (m *Multipart) PopFront() (Frame, bool) {
	if len(m.frames) == 0 {
		return nil, false
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, true
}

// PopBack removes and returns the last frame, if any.
func (m *Multipart) PopBack() (Frame, bool) {
	n := len(m.frames)
	if n == 0 {
		return nil, false
	}
	f := m.frames[n-1]
	m.frames = m.frames[:n-1]
	return f, true
}

// All returns an iterator over the frames in order, for use with range.
func (m *Multipart) All() func(yield func(int, Frame) bool) {
	return func(yield func(int, Frame) bool) {
		for i, f := range m.frames {
			if !yield(i, f) {
				return
			}
		}
	}
}
