package batch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSplit(t *testing.T) {
	cases := []struct {
		n, size int
		want    []int
	}{
		{0, 10, nil},
		{5, 10, []int{5}},
		{10, 10, []int{10}},
		{25, 10, []int{10, 10, 5}},
		{250, 0, []int{100, 100, 50}},
		{3, -1, []int{3}},
	}
	for _, tc := range cases {
		got := Split(ints(tc.n), tc.size)
		var sizes []int
		total := 0
		for _, b := range got {
			sizes = append(sizes, len(b))
			total += len(b)
		}
		assert.Equal(t, tc.want, sizes, "n=%d size=%d", tc.n, tc.size)
		assert.Equal(t, tc.n, total)
	}
}

func TestSplitKeepsOrder(t *testing.T) {
	got := Split([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, got)

	// appending to a chunk must not clobber the next one
	got[0] = append(got[0], "x")
	assert.Equal(t, []string{"c", "d"}, got[1])
}

type recorder struct {
	events []string
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.events = append(r.events, fmt.Sprintf("sleep %s", d))
	return nil
}

func TestSubmitterDelaysOnlyBetweenBatches(t *testing.T) {
	rec := &recorder{}
	s := &Submitter[int]{
		Delay: 2 * time.Second,
		Submit: func(_ context.Context, i, n int, b []int) (string, error) {
			rec.events = append(rec.events, fmt.Sprintf("submit %d/%d (%d)", i+1, n, len(b)))
			return fmt.Sprintf("tx-%d", i), nil
		},
		sleep: rec.sleep,
	}

	ids, err := s.Run(context.Background(), Split(ints(5), 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-0", "tx-1", "tx-2"}, ids)
	assert.Equal(t, []string{
		"submit 1/3 (2)",
		"sleep 2s",
		"submit 2/3 (2)",
		"sleep 2s",
		"submit 3/3 (1)",
	}, rec.events)
}

func TestSubmitterAbortsOnFirstFailure(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("rpc down")
	s := &Submitter[int]{
		Delay: time.Millisecond,
		Submit: func(_ context.Context, i, _ int, _ []int) (string, error) {
			rec.events = append(rec.events, fmt.Sprintf("submit %d", i))
			if i == 1 {
				return "", boom
			}
			return "ok", nil
		},
		sleep: rec.sleep,
	}

	ids, err := s.Run(context.Background(), Split(ints(30), 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "batch 2/3")
	assert.Equal(t, []string{"ok"}, ids)
	assert.Equal(t, []string{"submit 0", "sleep 1ms", "submit 1"}, rec.events, "no retry, no third batch")
}

func TestSubmitterCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	s := &Submitter[int]{
		Delay: time.Hour,
		Submit: func(context.Context, int, int, []int) (string, error) {
			calls++
			cancel()
			return "ok", nil
		},
	}

	ids, err := s.Run(ctx, Split(ints(4), 2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"ok"}, ids)
	assert.Equal(t, 1, calls)
}

func TestSubmitterNoBatches(t *testing.T) {
	s := &Submitter[int]{Submit: func(context.Context, int, int, []int) (string, error) {
		t.Fatal("unexpected submit")
		return "", nil
	}}
	ids, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
