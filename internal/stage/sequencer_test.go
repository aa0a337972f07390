package stage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qjourney/internal/timer"
)

func huffmanTable() Table {
	return Table{
		{Name: "input", Duration: 2 * time.Second},
		{Name: "tree", Duration: 2 * time.Second},
		{Name: "compress", Duration: 300 * time.Millisecond, Increment: 1, Limit: 10},
		{Name: "stats"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		table Table
		want  error
	}{
		{"empty", Table{}, ErrEmptyTable},
		{"unnamed", Table{{Duration: time.Second}}, ErrInvalidStage},
		{"duplicate", Table{{Name: "a", Duration: time.Second}, {Name: "a"}}, ErrInvalidStage},
		{"negative duration", Table{{Name: "a", Duration: -time.Second}}, ErrInvalidStage},
		{"negative increment", Table{{Name: "a", Duration: time.Second, Increment: -1}}, ErrInvalidStage},
		{"zero duration mid table", Table{{Name: "a"}, {Name: "b"}}, ErrInvalidStage},
		{"terminal only", Table{{Name: "a"}}, nil},
		{"huffman", huffmanTable(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTableErrorNamesStage(t *testing.T) {
	err := Table{{Name: "ok", Duration: time.Second}, {Name: "ok"}}.Validate()
	var te *TableError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, te.Index)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestResolvePerSymbol(t *testing.T) {
	table := Table{
		{Name: "reveal", Duration: time.Second, Increment: 1, PerSymbol: true},
		{Name: "complete"},
	}
	resolved := table.Resolve(5)
	assert.Equal(t, 5, resolved[0].Bound())
	assert.Equal(t, 0, table[0].Limit, "resolve must not mutate the receiver")
}

func TestScaleAndTotalDuration(t *testing.T) {
	table := huffmanTable()
	assert.Equal(t, 7300*time.Millisecond, table.TotalDuration())

	fast := table.Scale(0.25)
	assert.Equal(t, 500*time.Millisecond, fast[0].Duration)
	assert.Equal(t, 2*time.Second, table[0].Duration)
}

func TestTimedStagesExitAfterDuration(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("huffman", huffmanTable())
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	loop.Advance(1999 * time.Millisecond)
	assert.Equal(t, "input", seq.Snapshot().Stage)

	loop.Advance(time.Millisecond)
	assert.Equal(t, "tree", seq.Snapshot().Stage)

	loop.Advance(2 * time.Second)
	snap := seq.Snapshot()
	assert.Equal(t, "compress", snap.Stage)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, 10, snap.Limit)
}

func TestProgressStageFillsThenExits(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("huffman", huffmanTable())
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	loop.Advance(4*time.Second + 3*time.Second)
	snap := seq.Snapshot()
	assert.Equal(t, "compress", snap.Stage)
	assert.Equal(t, 10, snap.Progress)
	assert.InDelta(t, 1.0, snap.Fraction(), 1e-9)

	loop.Advance(300 * time.Millisecond)
	snap = seq.Snapshot()
	assert.Equal(t, "stats", snap.Stage)
	assert.True(t, snap.Done)
	assert.Equal(t, 0, loop.Pending(), "terminal stage holds no timers")
}

func TestProgressClampsAtLimit(t *testing.T) {
	seq, err := New("decode", Table{
		{Name: "decoding", Duration: time.Second, Increment: 30},
		{Name: "recovered"},
	})
	require.NoError(t, err)

	var seen []int
	seq.OnChange(func(s Snapshot) { seen = append(seen, s.Progress) })
	for i := 0; i < 4; i++ {
		seq.Advance()
	}
	assert.Equal(t, []int{30, 60, 90, 100}, seen)

	seq.Advance()
	assert.Equal(t, "recovered", seq.Snapshot().Stage)
}

func TestAdvanceAtTerminalIsNoop(t *testing.T) {
	seq, err := New("final", Table{{Name: "only"}})
	require.NoError(t, err)
	assert.True(t, seq.Done())

	calls := 0
	seq.OnChange(func(Snapshot) { calls++ })
	seq.Advance()
	seq.Advance()
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, seq.Snapshot().Ticks)
}

func TestTerminalProgressStage(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("fill", Table{{Name: "fill", Duration: time.Second, Increment: 50}})
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	loop.Advance(time.Second)
	assert.False(t, seq.Done())
	loop.Advance(time.Second)
	assert.True(t, seq.Done())
	assert.Equal(t, 0, loop.Pending())
}

func TestResetCancelsAndRestarts(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("huffman", huffmanTable())
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	loop.Advance(5 * time.Second)
	require.Equal(t, "compress", seq.Snapshot().Stage)

	seq.Reset()
	snap := seq.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 0, snap.Progress)
	assert.Equal(t, 1, loop.Pending())

	loop.Advance(2 * time.Second)
	assert.Equal(t, "tree", seq.Snapshot().Stage)
}

func TestPauseResume(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("huffman", huffmanTable())
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	loop.Advance(time.Second)
	seq.Pause()
	assert.True(t, seq.Snapshot().Paused)
	assert.Equal(t, 0, loop.Pending())

	loop.Advance(10 * time.Second)
	assert.Equal(t, "input", seq.Snapshot().Stage)

	seq.Resume()
	loop.Advance(2 * time.Second)
	assert.Equal(t, "tree", seq.Snapshot().Stage)
}

func TestStopCancelsTimersAndSilences(t *testing.T) {
	loop := timer.NewLoop()
	seq, err := New("huffman", huffmanTable())
	require.NoError(t, err)
	require.NoError(t, seq.Start(loop))

	calls := 0
	seq.OnChange(func(Snapshot) { calls++ })
	loop.Advance(2 * time.Second)
	require.Equal(t, 1, calls)

	seq.Stop()
	seq.Stop()
	assert.Equal(t, 0, loop.Pending())

	loop.Advance(time.Minute)
	seq.Advance()
	seq.Reset()
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, seq.Start(loop), ErrStopped)
}

func TestSnapshotReached(t *testing.T) {
	table := huffmanTable()
	seq, err := New("huffman", table)
	require.NoError(t, err)
	seq.Advance()

	snap := seq.Snapshot()
	assert.True(t, snap.Reached(table, "input"))
	assert.True(t, snap.Reached(table, "tree"))
	assert.False(t, snap.Reached(table, "stats"))
	assert.False(t, snap.Reached(table, "missing"))
}
