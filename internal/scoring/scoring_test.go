package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torrenter/pkg/types"
)

func cand(name string, score float64, res types.Resolution, seeders int) types.Candidate {
	return types.Candidate{FileName: name, Ref: types.DirectLink{Link: "magnet:?xt=" + name}, Score: score, Resolution: res, Seeders: seeders}
}

func names(cs []types.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.FileName
	}
	return out
}

func TestRankByScore(t *testing.T) {
	in := []types.Candidate{
		cand("candidate1", 5, types.Res1080p, 10),
		cand("candidate2", 9, types.Res1080p, 10),
		cand("candidate3", 7, types.Res1080p, 10),
	}
	got := Rank(in)
	assert.Equal(t, []string{"candidate2", "candidate3", "candidate1"}, names(got))
	assert.Equal(t, "candidate1", in[0].FileName, "input must not be reordered")
}

func TestRankSecondaryKeys(t *testing.T) {
	in := []types.Candidate{
		cand("a", 1, types.Res720p, 500),
		cand("b", 1, types.Res2160p, 1),
		cand("c", 1, types.Res2160p, 50),
		cand("d", 2, types.ResUnknown, 0),
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, names(Rank(in)))
}

func TestRankStableForTies(t *testing.T) {
	in := []types.Candidate{
		cand("first", 3, types.Res1080p, 7),
		cand("other", 4, types.Res1080p, 7),
		cand("second", 3, types.Res1080p, 7),
		cand("third", 3, types.Res1080p, 7),
	}
	assert.Equal(t, []string{"other", "first", "second", "third"}, names(Rank(in)))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank([]types.Candidate{}))
}

func TestRankIsNonIncreasing(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		in := make([]types.Candidate, r.Intn(30))
		for i := range in {
			in[i] = cand("x", float64(r.Intn(4)), types.Resolution(r.Intn(6)), r.Intn(5))
		}
		out := Rank(in)
		require.Len(t, out, len(in))
		for i := 1; i < len(out); i++ {
			a, b := out[i-1], out[i]
			ok := a.Score > b.Score ||
				(a.Score == b.Score && a.Resolution > b.Resolution) ||
				(a.Score == b.Score && a.Resolution == b.Resolution && a.Seeders >= b.Seeders)
			require.True(t, ok, "position %d out of order", i)
		}
	}
}

func TestScoreHardReject(t *testing.T) {
	b := Score(types.Candidate{FileName: "Movie 2024 HDCAM x264"}, DefaultParams)
	assert.Equal(t, -1.0, b.Total)
	assert.Equal(t, "bad_source", b.HardReject)
}

func TestScorePrefersHealthAndQuality(t *testing.T) {
	weak := Score(types.Candidate{FileName: "Show", Seeders: 2, Resolution: types.Res480p}, DefaultParams)
	strong := Score(types.Candidate{FileName: "Show", Seeders: 900, Resolution: types.Res2160p, Source: "WEB-DL"}, DefaultParams)
	assert.Greater(t, strong.Total, weak.Total)
	assert.LessOrEqual(t, strong.Total, 1.0)
}

func TestEnrichFallsBackToTitle(t *testing.T) {
	c := types.Candidate{FileName: "Some.Show.S01E01.720p.HDTV.x264-GRP"}
	Enrich(&c)
	assert.Equal(t, types.Res720p, c.Resolution)
	assert.NotEmpty(t, c.Source)

	kept := types.Candidate{FileName: "Some.Show.2160p.WEB-DL", Resolution: types.Res480p, Source: "custom"}
	Enrich(&kept)
	assert.Equal(t, types.Res480p, kept.Resolution)
	assert.Equal(t, "custom", kept.Source)
}
