package zmqadapter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMultipartPushPop(t *testing.T) {
	mp := NewMultipart()
	require.True(t, mp.IsEmpty())

	mp.PushBack(Frame("b"))
	mp.PushBack(Frame("c"))
	mp.PushFront(Frame("a"))

	require.Equal(t, 3, mp.Len())
	f, ok := mp.Get(0)
	require.True(t, ok)
	require.Equal(t, "a", string(f))

	front, ok := mp.PopFront()
	require.True(t, ok)
	require.Equal(t, "a", string(front))

	back, ok := mp.PopBack()
	require.True(t, ok)
	require.Equal(t, "c", string(back))

	require.Equal(t, 1, mp.Len())
}

func TestMultipartGetOutOfRange(t *testing.T) {
	mp := NewMultipartFromBytes([]byte("x"))
	_, ok := mp.Get(5)
	require.False(t, ok)
	_, ok = mp.Get(-1)
	require.False(t, ok)
}

func TestMultipartAllIteratesInOrder(t *testing.T) {
	mp := NewMultipartFromBytes([]byte("1"), []byte("2"), []byte("3"))

	var seen []string
	for i, f := range mp.All() {
		require.Equal(t, len(seen), i)
		seen = append(seen, string(f))
	}
	require.Equal(t, []string{"1", "2", "3"}, seen)
}

func TestMultipartAllStopsEarly(t *testing.T) {
	mp := NewMultipartFromBytes([]byte("1"), []byte("2"), []byte("3"))

	var seen []string
	for _, f := range mp.All() {
		seen = append(seen, string(f))
		if len(seen) == 2 {
			break
		}
	}
	require.Equal(t, []string{"1", "2"}, seen)
}

func TestMultipartPopFromEmpty(t *testing.T) {
	var mp Multipart
	_, ok := mp.PopFront()
	require.False(t, ok)
	_, ok = mp.PopBack()
	require.False(t, ok)
}
