package atropos

import (
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/trimqc/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWith(name string, counts map[string]int64) *Sample {
	s := newSample(name)
	for k, v := range counts {
		s.Counts[k] = v
	}
	return s
}

func TestFinalizePercentTrimmed(t *testing.T) {
	tests := []struct {
		name    string
		counts  map[string]int64
		want    float64
		wantSet bool
	}{
		{
			name:    "written",
			counts:  map[string]int64{"bp_processed": 1000, "bp_written": 900},
			want:    10.0,
			wantSet: true,
		},
		{
			name:    "trimmed and quality",
			counts:  map[string]int64{"bp_processed": 1000, "bp_trimmed": 150, "quality_trimmed": 50},
			want:    20.0,
			wantSet: true,
		},
		{
			name:    "trimmed only",
			counts:  map[string]int64{"bp_processed": 1000, "bp_trimmed": 150},
			want:    15.0,
			wantSet: true,
		},
		{
			name:    "written wins",
			counts:  map[string]int64{"bp_processed": 1000, "bp_written": 800, "bp_trimmed": 10},
			want:    20.0,
			wantSet: true,
		},
		{
			name:   "quality only",
			counts: map[string]int64{"bp_processed": 1000, "quality_trimmed": 50},
		},
		{
			name:   "no bp",
			counts: map[string]int64{},
		},
		{
			name:   "zero processed",
			counts: map[string]int64{"bp_processed": 0, "bp_written": 0},
		},
	}
	for _, test := range tests {
		s := sampleWith("s", test.counts)
		s.Counts["r_processed"] = 10
		s.Counts["r_written"] = 7
		require.NoError(t, s.finalize(), test.name)
		assert.Equal(t, int64(3), s.Counts["r_lost"], test.name)
		assert.Equal(t, test.wantSet, s.HasPercentTrimmed, test.name)
		if test.wantSet {
			assert.InEpsilon(t, test.want, s.PercentTrimmed, 1e-9, test.name)
		}
	}
}

func TestFinalizeMissingRequired(t *testing.T) {
	for _, missing := range []string{"r_processed", "r_written"} {
		res := NewResult()
		s := res.startSample("s1")
		s.Counts["r_processed"] = 10
		s.Counts["r_written"] = 5
		delete(s.Counts, missing)
		err := res.Finalize()
		require.Error(t, err)
		assert.True(t, errors.Is(errors.Invalid, err))
		assert.Contains(t, err.Error(), missing)
	}
}

func TestFinalizeErrorNamesFirstSample(t *testing.T) {
	for i := 0; i < 20; i++ {
		res := NewResult()
		for _, name := range []string{"zeta", "alpha", "mid"} {
			res.startSample(name).Counts["r_processed"] = 10
		}
		err := res.Finalize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sample alpha: missing r_written")
	}
}

func TestFinalizeTwoSamples(t *testing.T) {
	res := NewResult()
	res.Samples["A"] = sampleWith("A", map[string]int64{
		"r_processed": 100, "r_written": 90, "bp_processed": 1000, "bp_written": 800,
	})
	res.Samples["B"] = sampleWith("B", map[string]int64{
		"r_processed": 100, "r_written": 80, "bp_processed": 1000, "bp_trimmed": 150, "quality_trimmed": 50,
	})
	require.NoError(t, res.Finalize())
	assert.Equal(t, 20.0, res.Samples["A"].PercentTrimmed)
	assert.Equal(t, 20.0, res.Samples["B"].PercentTrimmed)
	assert.Equal(t, int64(10), res.Samples["A"].Counts["r_lost"])
	assert.Equal(t, int64(20), res.Samples["B"].Counts["r_lost"])
}

func TestMerge(t *testing.T) {
	dst := NewResult()
	dst.startSample("s1").Counts["r_processed"] = 1
	dst.startAdapter("AAAA", "s1")
	dst.LengthCounts["AAAA"]["s1"][3] = 10

	src := NewResult()
	src.startSample("s1").Counts["r_processed"] = 2
	src.startSample("s2").Counts["r_processed"] = 3
	src.startAdapter("CCCC", "s2")
	src.startAdapter("AAAA", "s2")
	src.LengthCounts["AAAA"]["s2"][4] = 20
	src.LengthExp["AAAA"]["s2"][4] = 1.5

	dst.Merge(src)
	assert.Equal(t, int64(2), dst.Samples["s1"].Counts["r_processed"])
	assert.Equal(t, int64(3), dst.Samples["s2"].Counts["r_processed"])
	assert.Equal(t, []string{"AAAA", "CCCC"}, dst.Adapters)
	// s1 was replaced, so its old histogram is gone.
	assert.Equal(t, map[string]map[int]int64{"s2": {4: 20}}, dst.LengthCounts["AAAA"])
	assert.Equal(t, 1.5, dst.LengthExp["AAAA"]["s2"][4])
}

func TestFilter(t *testing.T) {
	res := NewResult()
	res.startSample("keep")
	res.startSample("drop")
	res.startAdapter("AAAA", "drop")
	res.startAdapter("CCCC", "keep")
	res.startAdapter("CCCC", "drop")

	res.Filter(func(s string) bool { return s != "drop" })
	assert.Len(t, res.Samples, 1)
	assert.Equal(t, []string{"CCCC"}, res.Adapters)
	_, ok := res.LengthCounts["AAAA"]
	assert.False(t, ok)
	_, ok = res.LengthCounts["CCCC"]["drop"]
	assert.False(t, ok)
}

func TestTable(t *testing.T) {
	res := NewResult()
	res.Samples["A"] = sampleWith("A", map[string]int64{
		"r_processed": 100, "r_written": 90, "bp_processed": 1000, "bp_written": 750,
	})
	res.Samples["B"] = sampleWith("B", map[string]int64{"r_processed": 5, "r_written": 5})
	require.NoError(t, res.Finalize())
	assert.Equal(t, report.Table{
		"A": {"r_processed": 100, "r_written": 90, "r_lost": 10, "bp_processed": 1000, "bp_written": 750, "percent_trimmed": 25},
		"B": {"r_processed": 5, "r_written": 5, "r_lost": 0},
	}, res.Table())
}
