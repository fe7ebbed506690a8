package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/moistari/rls"

	"torrenter/pkg/types"
)

// Params weights the heuristic used when an indexer does not score its own results.
type Params struct {
	WHealth, WQuality float64
}

var DefaultParams = Params{WHealth: 0.6, WQuality: 0.4}

type Breakdown struct {
	Health, Quality float64
	HardReject      string
	Total           float64
}

func HardReject(title string) (string, bool) {
	t := " " + strings.ToLower(title) + " "
	for _, bad := range []string{" cam ", "hdcam", " ts ", "telesync", "telecine", "hdts"} {
		if strings.Contains(t, bad) {
			return "bad_source", true
		}
	}
	return "", false
}

func logNormSeeders(s int) float64 {
	if s <= 0 {
		return 0
	}
	v := math.Log1p(float64(s)) / math.Log1p(1000.0)
	if v > 1 {
		v = 1
	}
	return v
}

func qualityFit(c types.Candidate) float64 {
	src := map[string]float64{"web-dl": 1.0, "bluray": 0.9, "webrip": 0.85, "hdtv": 0.7}
	base := src[strings.ToLower(c.Source)]
	if base == 0 {
		base = 0.6
	}
	res := map[types.Resolution]float64{
		types.Res2160p: 1.0, types.Res1080p: 0.95, types.Res720p: 0.8, types.Res576p: 0.6, types.Res480p: 0.5,
	}
	rw := res[c.Resolution]
	if rw == 0 {
		rw = 0.6
	}
	return 0.5*base + 0.5*rw
}

// Score rates a candidate in [0,1], or -1 for hard rejects.
func Score(c types.Candidate, p Params) Breakdown {
	if why, reject := HardReject(c.FileName); reject {
		return Breakdown{HardReject: why, Total: -1}
	}
	b := Breakdown{Health: logNormSeeders(c.Seeders), Quality: qualityFit(c)}
	b.Total = math.Round((p.WHealth*b.Health+p.WQuality*b.Quality)*1000) / 1000
	return b
}

// Enrich fills resolution and source from the title when the indexer left them blank.
func Enrich(c *types.Candidate) {
	if c.Resolution != types.ResUnknown && c.Source != "" {
		return
	}
	r := rls.ParseString(c.FileName)
	if c.Resolution == types.ResUnknown {
		c.Resolution = types.ParseResolution(r.Resolution)
		if c.Resolution == types.ResUnknown {
			c.Resolution = pickRes(c.FileName)
		}
	}
	if c.Source == "" {
		c.Source = r.Source
		if c.Source == "" {
			c.Source = pickSource(c.FileName)
		}
	}
}

func pickRes(t string) types.Resolution {
	t = strings.ToLower(t)
	for _, k := range []string{"2160p", "1080p", "720p", "576p", "480p"} {
		if strings.Contains(t, k) {
			return types.ParseResolution(k)
		}
	}
	if strings.Contains(t, "4k") || strings.Contains(t, "uhd") {
		return types.Res2160p
	}
	return types.ResUnknown
}

func pickSource(t string) string {
	t = strings.ToLower(t)
	switch {
	case strings.Contains(t, "web-dl"), strings.Contains(t, "webdl"):
		return "WEB-DL"
	case strings.Contains(t, "webrip"):
		return "WEBRip"
	case strings.Contains(t, "hdtv"):
		return "HDTV"
	case strings.Contains(t, "bluray"), strings.Contains(t, "blu-ray"):
		return "BluRay"
	}
	return ""
}

// Rank orders by score, resolution, seeders, all descending. Ties keep input order.
// The input slice is left untouched.
func Rank(cands []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Resolution != b.Resolution {
			return a.Resolution > b.Resolution
		}
		return a.Seeders > b.Seeders
	})
	return out
}
