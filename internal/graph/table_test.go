package graph

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/attrgraph/internal/arena"
)

func newTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	tbl := NewTable(opts...)
	t.Cleanup(tbl.Close)
	return tbl
}

func filled(t *testing.T, tbl *Table, data []byte) WeakHandle {
	t.Helper()
	w := tbl.CreateValue(len(data))
	_, err := tbl.Write(w, data)
	require.NoError(t, err)
	return w
}

func TestTable_CreateValue(t *testing.T) {
	tbl := newTable(t)

	w := tbl.CreateValue(16)
	assert.Equal(t, Handle(1), w.Handle())
	assert.Equal(t, uint32(1), w.Seed())
	assert.True(t, tbl.IsValid(w))
	assert.Equal(t, 1, tbl.Len())

	v, err := tbl.Value(w)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), v)

	empty := tbl.CreateValue(0)
	v, err = tbl.Value(empty)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestTable_ContextIDsAreDistinct(t *testing.T) {
	a := newTable(t)
	b := newTable(t)
	assert.NotZero(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestTable_DestroyMakesWeakHandlesStale(t *testing.T) {
	tbl := newTable(t)

	old := tbl.CreateValue(8)
	require.NoError(t, tbl.Destroy(old.Handle()))

	assert.False(t, tbl.IsValid(old))
	assert.Equal(t, uint32(2), tbl.Generation(old.Handle()))

	_, err := tbl.Value(old)
	assert.ErrorIs(t, err, ErrStaleReference)

	// The slot is reused under a new generation.
	reused := tbl.CreateValue(8)
	assert.Equal(t, old.Handle(), reused.Handle())
	assert.NotEqual(t, old, reused)
	assert.True(t, tbl.IsValid(reused))
	assert.False(t, tbl.IsValid(old))

	assert.ErrorIs(t, tbl.Destroy(old.Handle()+100), ErrStaleReference)
	assert.ErrorIs(t, tbl.Destroy(Nil), ErrStaleReference)
	assert.False(t, tbl.IsValid(WeakHandle{}))
	assert.Equal(t, uint32(0), tbl.Generation(500))
}

func TestTable_HandlesAreReusedLIFO(t *testing.T) {
	tbl := newTable(t)

	var hs []WeakHandle
	for range 5 {
		hs = append(hs, tbl.CreateValue(4))
	}

	require.NoError(t, tbl.Destroy(hs[1].Handle()))
	require.NoError(t, tbl.Destroy(hs[3].Handle()))

	assert.Equal(t, hs[3].Handle(), tbl.CreateValue(4).Handle())
	assert.Equal(t, hs[1].Handle(), tbl.CreateValue(4).Handle())
	assert.Equal(t, Handle(6), tbl.CreateValue(4).Handle())
}

func TestTable_IndirectionResolvesSubRange(t *testing.T) {
	tbl := newTable(t)

	data := []byte("0123456789abcdef")
	src := filled(t, tbl, data)

	view, err := tbl.CreateIndirection(src, 8, 4, IndirectionOptions{})
	require.NoError(t, err)

	v, err := tbl.Value(view)
	require.NoError(t, err)
	assert.Equal(t, []byte("89ab"), v)

	tail, err := tbl.CreateIndirection(src, 10, NoSize, IndirectionOptions{})
	require.NoError(t, err)
	v, err = tbl.Value(tail)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), v)

	ind, err := tbl.Indirection(view)
	require.NoError(t, err)
	assert.Equal(t, src, ind.Source())
	assert.False(t, ind.TraversesGraphContexts())
	assert.False(t, ind.IsMutable())

	// Chains of indirections compose offsets.
	nested, err := tbl.CreateIndirection(tail, 2, 2, IndirectionOptions{})
	require.NoError(t, err)
	v, err = tbl.Value(nested)
	require.NoError(t, err)
	assert.Equal(t, []byte("cd"), v)
}

func TestTable_IndirectionOutOfRange(t *testing.T) {
	tbl := newTable(t)
	src := tbl.CreateValue(16)

	tests := []struct {
		name   string
		offset uint32
		size   uint32
	}{
		{"size past end", 12, 8},
		{"offset past end", 20, NoSize},
		{"offset past end with size", 17, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := tbl.CreateIndirection(src, tt.offset, tt.size, IndirectionOptions{})
			require.NoError(t, err)

			_, err = tbl.Value(w)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}

	w, err := tbl.CreateIndirection(src, 16, NoSize, IndirectionOptions{})
	require.NoError(t, err)
	v, err := tbl.Value(w)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestTable_IndirectionToDestroyedSource(t *testing.T) {
	tbl := newTable(t)

	src := tbl.CreateValue(8)
	view, err := tbl.CreateIndirection(src, 0, 4, IndirectionOptions{})
	require.NoError(t, err)

	require.NoError(t, tbl.Destroy(src.Handle()))

	// Slot reuse must not revive the alias.
	tbl.CreateValue(8)

	_, err = tbl.Value(view)
	assert.ErrorIs(t, err, ErrStaleReference)

	_, err = tbl.CreateIndirection(src, 0, 4, IndirectionOptions{})
	assert.ErrorIs(t, err, ErrStaleReference)

	_, err = tbl.CreateIndirection(tbl.CreateValue(4), MaxOffset+1, 4, IndirectionOptions{})
	assert.ErrorIs(t, err, ErrOffsetOverflow)
}

func TestTable_WriteThroughMutableIndirection(t *testing.T) {
	tbl := newTable(t)

	src := filled(t, tbl, []byte("abcdefgh"))
	observer := tbl.CreateValue(0)

	view, err := tbl.CreateIndirection(src, 2, 3, IndirectionOptions{
		Mutable:    true,
		Dependency: observer.Handle(),
	})
	require.NoError(t, err)

	ind, err := tbl.Indirection(view)
	require.NoError(t, err)
	require.True(t, ind.IsMutable())
	assert.Equal(t, observer.Handle(), ind.AsMutable().Dependency())

	dep, err := tbl.Write(view, []byte("XYZ"))
	require.NoError(t, err)
	assert.Equal(t, observer.Handle(), dep)

	v, err := tbl.Value(src)
	require.NoError(t, err)
	assert.Equal(t, []byte("abXYZfgh"), v)

	_, err = tbl.Write(view, []byte("toolong"))
	var sm *ErrSizeMismatch
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 3, sm.Expected)
	assert.Equal(t, 7, sm.Actual)
}

func TestTable_WriteRejectsImmutableIndirection(t *testing.T) {
	tbl := newTable(t)

	src := tbl.CreateValue(4)
	view, err := tbl.CreateIndirection(src, 0, 4, IndirectionOptions{})
	require.NoError(t, err)

	_, err = tbl.Write(view, []byte("abcd"))
	assert.ErrorIs(t, err, ErrNotWritable)

	dep, err := tbl.Write(src, []byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, Nil, dep)

	require.NoError(t, tbl.Destroy(src.Handle()))
	_, err = tbl.Write(src, []byte("abcd"))
	assert.ErrorIs(t, err, ErrStaleReference)
}

func TestTable_CrossContextIndirection(t *testing.T) {
	other := newTable(t)
	tbl := newTable(t)

	other.CreateValue(1)
	other.CreateValue(1)
	src := filled(t, other, []byte("hello, world"))

	view, err := tbl.CreateIndirection(src, 7, 5, IndirectionOptions{Context: other})
	require.NoError(t, err)

	ind, err := tbl.Indirection(view)
	require.NoError(t, err)
	assert.True(t, ind.TraversesGraphContexts())

	v, err := tbl.Value(view)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), v)

	// The source handle means nothing in this table's own slots.
	_, err = tbl.CreateIndirection(src, 0, 1, IndirectionOptions{})
	assert.ErrorIs(t, err, ErrStaleReference)

	// Redirect stays within the source context.
	other2 := filled(t, other, []byte("bye"))
	require.NoError(t, tbl.Redirect(view, other2, NoSize))
	_, err = tbl.Value(view)
	assert.ErrorIs(t, err, ErrOutOfRange, "offset 7 is kept and exceeds the new source")

	require.NoError(t, other.Destroy(other2.Handle()))
	_, err = tbl.Value(view)
	assert.ErrorIs(t, err, ErrStaleReference)
}

func TestTable_Redirect(t *testing.T) {
	tbl := newTable(t)

	a := filled(t, tbl, []byte("aaaa"))
	b := filled(t, tbl, []byte("bbbbbbbb"))

	view, err := tbl.CreateIndirection(a, 1, 2, IndirectionOptions{})
	require.NoError(t, err)

	require.NoError(t, tbl.Redirect(view, b, 5))

	v, err := tbl.Value(view)
	require.NoError(t, err)
	assert.Equal(t, []byte("bbbbb"), v)

	assert.ErrorIs(t, tbl.Redirect(a, b, 1), ErrNotIndirection)
	_, err = tbl.Indirection(a)
	assert.ErrorIs(t, err, ErrNotIndirection)

	require.NoError(t, tbl.Destroy(a.Handle()))
	assert.ErrorIs(t, tbl.Redirect(view, a, 1), ErrStaleReference)
}

func TestTable_IndirectionCycle(t *testing.T) {
	tbl := newTable(t, WithMaxDepth(8))

	base := tbl.CreateValue(4)
	first, err := tbl.CreateIndirection(base, 0, NoSize, IndirectionOptions{})
	require.NoError(t, err)
	second, err := tbl.CreateIndirection(first, 0, NoSize, IndirectionOptions{})
	require.NoError(t, err)

	require.NoError(t, tbl.Redirect(first, second, NoSize))

	_, err = tbl.Value(second)
	assert.ErrorIs(t, err, ErrIndirectionDepth)
}

func TestTable_Reset(t *testing.T) {
	tbl := newTable(t)

	var old []WeakHandle
	for range 10 {
		old = append(old, tbl.CreateValue(32))
	}
	require.NoError(t, tbl.Destroy(old[4].Handle()))
	require.Equal(t, uint64(1), tbl.Arena().Stats().ActiveBlocks)

	tbl.Reset()

	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, uint64(0), tbl.Arena().Stats().ActiveBlocks)
	for _, w := range old {
		assert.False(t, tbl.IsValid(w))
	}

	w := tbl.CreateValue(8)
	assert.Equal(t, Handle(1), w.Handle())
	assert.Equal(t, uint32(2), w.Seed())
	assert.Equal(t, Handle(2), tbl.CreateValue(8).Handle())
}

func TestTable_BorrowedArenaSurvivesReset(t *testing.T) {
	a := arena.New()
	defer a.Free()

	tbl := newTable(t, WithArena(a))
	tbl.CreateValue(64)
	require.Same(t, a, tbl.Arena())

	tbl.Reset()
	assert.Equal(t, uint64(1), a.Stats().ActiveBlocks)
}

func TestTable_Each(t *testing.T) {
	tbl := newTable(t)

	var created []WeakHandle
	for range 4 {
		created = append(created, tbl.CreateValue(1))
	}
	require.NoError(t, tbl.Destroy(created[2].Handle()))

	var seen []WeakHandle
	tbl.Each(func(w WeakHandle) bool {
		seen = append(seen, w)
		return true
	})
	assert.Equal(t, []WeakHandle{created[0], created[1], created[3]}, seen)

	seen = seen[:0]
	tbl.Each(func(w WeakHandle) bool {
		seen = append(seen, w)
		return false
	})
	assert.Len(t, seen, 1)
}

func TestTable_EachToleratesMutation(t *testing.T) {
	tbl := newTable(t)

	var created []WeakHandle
	for range 6 {
		created = append(created, tbl.CreateValue(1))
	}

	var seen []WeakHandle
	tbl.Each(func(w WeakHandle) bool {
		seen = append(seen, w)
		if w == created[1] {
			require.NoError(t, tbl.Destroy(created[3].Handle()))
			require.NoError(t, tbl.Destroy(created[4].Handle()))
			tbl.CreateValue(1)
		}
		return true
	})

	assert.Equal(t, []WeakHandle{created[0], created[1], created[2], created[5]}, seen)
	assert.Equal(t, 5, tbl.Len())
}

func TestTable_CreateValueRejectsNegativeSize(t *testing.T) {
	tbl := newTable(t)
	assert.Panics(t, func() { tbl.CreateValue(-1) })
	assert.Zero(t, tbl.Len())
}

func TestTable_CloseInvalidatesHandles(t *testing.T) {
	tbl := newTable(t)

	old := filled(t, tbl, []byte("OLDVALUE"))
	view, err := tbl.CreateIndirection(old, 0, 3, IndirectionOptions{})
	require.NoError(t, err)

	tbl.Close()
	assert.True(t, tbl.Closed())
	assert.Zero(t, tbl.Len())
	assert.False(t, tbl.IsValid(old))
	assert.False(t, tbl.IsValid(view))

	_, err = tbl.Value(old)
	assert.ErrorIs(t, err, ErrStaleReference)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = tbl.Write(old, []byte("NEWVALUE"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, tbl.Destroy(old.Handle()), ErrClosed)
	assert.ErrorIs(t, tbl.Redirect(view, old, 2), ErrClosed)

	_, err = tbl.CreateIndirection(old, 0, 1, IndirectionOptions{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.PanicsWithValue(t, ErrClosed, func() { tbl.CreateValue(8) })

	tbl.Reset()
	tbl.Close()
	assert.False(t, tbl.IsValid(old))
}

func TestTable_CloseInvalidatesCrossContextViews(t *testing.T) {
	peer := newTable(t)
	tbl := newTable(t)

	src := filled(t, peer, []byte("AAAA"))
	view, err := tbl.CreateIndirection(src, 0, NoSize, IndirectionOptions{Context: peer, Mutable: true})
	require.NoError(t, err)

	peer.Close()

	assert.True(t, tbl.IsValid(view), "the view node itself is still live")
	_, err = tbl.Value(view)
	assert.ErrorIs(t, err, ErrStaleReference)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = tbl.Write(view, []byte("ZZZZ"))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = tbl.CreateIndirection(src, 0, 1, IndirectionOptions{Context: peer})
	assert.ErrorIs(t, err, ErrStaleReference)
}

func TestTable_LogsSlotRecycling(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tbl := newTable(t, WithLogger(logger))
	w := tbl.CreateValue(4)
	require.NoError(t, tbl.Destroy(w.Handle()))
	tbl.CreateValue(4)

	_, err := tbl.Value(w)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "recycled node slot")
	assert.Contains(t, out, "stale node reference")
	assert.Contains(t, out, "context_id=")
}

func TestTable_ArenaOptions(t *testing.T) {
	tbl := newTable(t, WithArenaOptions(arena.WithIncrement(4096)))
	assert.Equal(t, 4096, tbl.Arena().Increment())
}

func BenchmarkTable_ValueThroughIndirection(b *testing.B) {
	tbl := NewTable()
	defer tbl.Close()

	src := tbl.CreateValue(64)
	view, err := tbl.CreateIndirection(src, 8, 16, IndirectionOptions{})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := tbl.Value(view); err != nil {
			b.Fatal(err)
		}
	}
}
