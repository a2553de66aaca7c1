package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okProbe(path string, ms int) ProbeOutcome {
	return ProbeOutcome{Path: path, OK: true, StatusCode: 200, Elapsed: time.Duration(ms) * time.Millisecond}
}

func failProbe(path string, status int) ProbeOutcome {
	return ProbeOutcome{Path: path, OK: false, StatusCode: status, Elapsed: 3 * time.Millisecond}
}

// player builds a successful three-path player whose total latency is ms.
func player(id, ms int) PlayerOutcome {
	return PlayerOutcome{PlayerID: id, Results: []ProbeOutcome{
		okProbe("/", ms-2),
		okProbe("/game", 1),
		okProbe("/api", 1),
	}}
}

func info(concurrency int) RunInfo {
	return RunInfo{BaseURL: "http://pi.local", Concurrency: concurrency, PathCount: 3, TotalElapsed: time.Second}
}

func TestAggregate_AllSucceed(t *testing.T) {
	outcomes := []PlayerOutcome{player(3, 50), player(1, 10), player(5, 40), player(2, 30), player(4, 20)}

	r := Aggregate(info(5), outcomes)

	assert.Equal(t, 5, r.SuccessCount)
	assert.Equal(t, 0, r.FailCount)
	assert.Equal(t, int64(30), r.AvgMs)
	assert.Equal(t, int64(30), r.P50Ms, "p50 is the element at index 2 of five")
	assert.Equal(t, int64(50), r.P95Ms)
	assert.False(t, r.Cancelled)
}

func TestAggregate_OutcomeOrderIsPreserved(t *testing.T) {
	outcomes := []PlayerOutcome{player(3, 50), player(1, 10), player(2, 30)}

	r := Aggregate(info(3), outcomes)

	require.Len(t, r.Outcomes, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{r.Outcomes[0].PlayerID, r.Outcomes[1].PlayerID, r.Outcomes[2].PlayerID})
}

func TestAggregate_EvenCountTakesUpperMiddle(t *testing.T) {
	outcomes := []PlayerOutcome{player(1, 10), player(2, 20), player(3, 30), player(4, 40)}

	r := Aggregate(info(4), outcomes)

	assert.Equal(t, int64(30), r.P50Ms)
	assert.Equal(t, int64(40), r.P95Ms)
	assert.Equal(t, int64(25), r.AvgMs)
}

func TestAggregate_AverageIsRounded(t *testing.T) {
	outcomes := []PlayerOutcome{player(1, 10), player(2, 11)}

	r := Aggregate(info(2), outcomes)

	assert.Equal(t, int64(11), r.AvgMs, "10.5 rounds half away from zero")
}

func TestAggregate_P95Index(t *testing.T) {
	var outcomes []PlayerOutcome
	for i := 1; i <= 20; i++ {
		outcomes = append(outcomes, player(i, i*10))
	}

	r := Aggregate(info(20), outcomes)

	assert.Equal(t, int64(200), r.P95Ms, "floor(20*0.95) = 19")
	assert.Equal(t, int64(110), r.P50Ms)
}

func TestAggregate_SinglePlayer(t *testing.T) {
	r := Aggregate(info(1), []PlayerOutcome{player(1, 42)})

	assert.Equal(t, int64(42), r.AvgMs)
	assert.Equal(t, int64(42), r.P50Ms)
	assert.Equal(t, int64(42), r.P95Ms)
}

func TestAggregate_NoSuccesses(t *testing.T) {
	outcomes := []PlayerOutcome{
		{PlayerID: 1, Results: []ProbeOutcome{failProbe("/", 500)}},
		{PlayerID: 2, Results: []ProbeOutcome{okProbe("/", 5), failProbe("/game", 404)}},
	}

	r := Aggregate(info(2), outcomes)

	assert.Equal(t, 0, r.SuccessCount)
	assert.Equal(t, 2, r.FailCount)
	assert.Zero(t, r.AvgMs)
	assert.Zero(t, r.P50Ms)
	assert.Zero(t, r.P95Ms)
}

func TestAggregate_ShortPrefixCountsAsFailure(t *testing.T) {
	// All attempted probes passed but the player never reached the last path.
	short := PlayerOutcome{PlayerID: 1, Results: []ProbeOutcome{okProbe("/", 5), okProbe("/game", 5)}}

	r := Aggregate(info(1), []PlayerOutcome{short})

	assert.Equal(t, 0, r.SuccessCount)
	assert.Equal(t, 1, r.FailCount)
}

func TestAggregate_EmptyResultsCountAsFailure(t *testing.T) {
	r := Aggregate(info(1), []PlayerOutcome{{PlayerID: 1}})

	assert.Equal(t, 1, r.FailCount)
}

func TestAggregate_FailedPlayersExcludedFromLatency(t *testing.T) {
	outcomes := []PlayerOutcome{
		player(1, 10),
		{PlayerID: 2, Results: []ProbeOutcome{{Path: "/", Error: "timeout", Elapsed: 15 * time.Second}}},
		player(3, 20),
	}

	r := Aggregate(info(3), outcomes)

	assert.Equal(t, 2, r.SuccessCount)
	assert.Equal(t, 1, r.FailCount)
	assert.Equal(t, int64(15), r.AvgMs)
	assert.Equal(t, int64(20), r.P95Ms)
}

func TestAggregate_CountsMatchOutcomes(t *testing.T) {
	outcomes := []PlayerOutcome{
		player(1, 10),
		{PlayerID: 2, Results: []ProbeOutcome{failProbe("/", 503)}},
	}
	in := info(10)
	in.Cancelled = true

	r := Aggregate(in, outcomes)

	assert.Equal(t, len(outcomes), r.SuccessCount+r.FailCount)
	assert.True(t, r.WasCancelled())
	assert.Equal(t, 10, r.Concurrency)
}

func TestAggregate_Idempotent(t *testing.T) {
	outcomes := []PlayerOutcome{
		player(2, 35),
		{PlayerID: 1, Results: []ProbeOutcome{failProbe("/", 500)}},
		player(3, 15),
	}

	first := Aggregate(info(3), outcomes)
	second := Aggregate(info(3), outcomes)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, outcomes[0].PlayerID, "input order untouched")
}

func TestAggregate_PerProbeMillisecondsAreTruncated(t *testing.T) {
	p := PlayerOutcome{PlayerID: 1, Results: []ProbeOutcome{
		{Path: "/", OK: true, StatusCode: 200, Elapsed: 1900 * time.Microsecond},
		{Path: "/game", OK: true, StatusCode: 200, Elapsed: 1900 * time.Microsecond},
		{Path: "/api", OK: true, StatusCode: 200, Elapsed: 1900 * time.Microsecond},
	}}

	r := Aggregate(info(1), []PlayerOutcome{p})

	assert.Equal(t, int64(3), r.AvgMs)
}

func TestRunReport_FirstFailure(t *testing.T) {
	outcomes := []PlayerOutcome{
		player(1, 10),
		{PlayerID: 2, Results: []ProbeOutcome{okProbe("/", 5), failProbe("/game", 404)}},
		{PlayerID: 3, Results: []ProbeOutcome{{Path: "/", Error: "timeout"}}},
	}
	r := Aggregate(info(3), outcomes)

	f, ok := r.FirstFailure()

	require.True(t, ok)
	assert.Equal(t, "/game", f.Path)
	assert.Equal(t, 404, f.StatusCode)
}

func TestRunReport_FirstFailureNone(t *testing.T) {
	r := Aggregate(info(1), []PlayerOutcome{player(1, 10)})

	_, ok := r.FirstFailure()

	assert.False(t, ok)
}
