// ABOUTME: Fourteen-tier rank ladder keyed by normalized score.
// ABOUTME: Compiled-in table plus lookup and progress-to-next-tier helpers.
package scoring

import "math"

// Tier identifies one rung of the rank ladder.
type Tier string

const (
	TierBronze1     Tier = "bronze1"
	TierBronze2     Tier = "bronze2"
	TierBronze3     Tier = "bronze3"
	TierSilver1     Tier = "silver1"
	TierSilver2     Tier = "silver2"
	TierSilver3     Tier = "silver3"
	TierGold1       Tier = "gold1"
	TierGold2       Tier = "gold2"
	TierGold3       Tier = "gold3"
	TierPlatinum1   Tier = "platinum1"
	TierPlatinum2   Tier = "platinum2"
	TierPlatinum3   Tier = "platinum3"
	TierGymMaster   Tier = "gym_master"
	TierPowerlifter Tier = "powerlifter"
)

// Rank describes a tier with its score interval [MinScore, MaxScore).
// MaxScore is nil for the top tier.
type Rank struct {
	Tier      Tier     `json:"tier"`
	Label     string   `json:"label"`
	LabelJa   string   `json:"labelJa"`
	MinScore  float64  `json:"minScore"`
	MaxScore  *float64 `json:"maxScore"`
	Color     string   `json:"color"`
	GlowColor string   `json:"glowColor"`
	Icon      string   `json:"icon"`
}

// IsTop reports whether the rank is the unbounded top tier.
func (r Rank) IsTop() bool {
	return r.MaxScore == nil
}

// clone detaches MaxScore from the compiled-in table.
func (r Rank) clone() Rank {
	if r.MaxScore != nil {
		r.MaxScore = bound(*r.MaxScore)
	}
	return r
}

func bound(v float64) *float64 { return &v }

var rankTable = []Rank{
	{TierBronze1, "Bronze I", "ブロンズ I", 0, bound(80), "#cd7f32", "rgba(205,127,50,0.5)", "🥉"},
	{TierBronze2, "Bronze II", "ブロンズ II", 80, bound(120), "#cd7f32", "rgba(205,127,50,0.5)", "🥉"},
	{TierBronze3, "Bronze III", "ブロンズ III", 120, bound(160), "#b87333", "rgba(184,115,51,0.5)", "🥉"},
	{TierSilver1, "Silver I", "シルバー I", 160, bound(200), "#c0c0c0", "rgba(192,192,192,0.5)", "🥈"},
	{TierSilver2, "Silver II", "シルバー II", 200, bound(230), "#c0c0c0", "rgba(192,192,192,0.5)", "🥈"},
	{TierSilver3, "Silver III", "シルバー III", 230, bound(260), "#a8a9ad", "rgba(168,169,173,0.5)", "🥈"},
	{TierGold1, "Gold I", "ゴールド I", 260, bound(290), "#ffd700", "rgba(255,215,0,0.5)", "🥇"},
	{TierGold2, "Gold II", "ゴールド II", 290, bound(320), "#ffd700", "rgba(255,215,0,0.5)", "🥇"},
	{TierGold3, "Gold III", "ゴールド III", 320, bound(350), "#f0c000", "rgba(240,192,0,0.5)", "🥇"},
	{TierPlatinum1, "Platinum I", "プラチナ I", 350, bound(380), "#e5e4e2", "rgba(229,228,226,0.7)", "💎"},
	{TierPlatinum2, "Platinum II", "プラチナ II", 380, bound(410), "#e5e4e2", "rgba(229,228,226,0.7)", "💎"},
	{TierPlatinum3, "Platinum III", "プラチナ III", 410, bound(440), "#d0d0e8", "rgba(208,208,232,0.7)", "💎"},
	{TierGymMaster, "Gym Master", "ジムの主", 440, bound(500), "#ff4500", "rgba(255,69,0,0.6)", "👑"},
	{TierPowerlifter, "Powerlifter", "パワーリフター", 500, nil, "#a855f7", "rgba(168,85,247,0.7)", "⚡"},
}

// Ranks returns a copy of the rank table ordered from lowest to highest tier.
func Ranks() []Rank {
	out := make([]Rank, len(rankTable))
	for i, r := range rankTable {
		out[i] = r.clone()
	}
	return out
}

// RankByTier returns the rank for a tier id.
func RankByTier(t Tier) (Rank, bool) {
	for _, r := range rankTable {
		if r.Tier == t {
			return r.clone(), true
		}
	}
	return Rank{}, false
}

// LookupRank returns the highest tier whose MinScore is <= score.
// Negative and NaN scores fall through to the lowest tier.
func LookupRank(score float64) Rank {
	_, r := lookup(score)
	return r
}

func lookup(score float64) (int, Rank) {
	for i := len(rankTable) - 1; i >= 0; i-- {
		if score >= rankTable[i].MinScore {
			return i, rankTable[i].clone()
		}
	}
	return 0, rankTable[0].clone()
}

// Progress is the position of a score inside its tier.
type Progress struct {
	Current         Rank    `json:"currentRank"`
	Next            *Rank   `json:"nextRank"`
	ProgressPercent float64 `json:"progressPercent"`
	PointsToNext    float64 `json:"pointsToNext"`
}

// ProgressToNext reports how far score has advanced through its tier.
// The top tier is terminal: no next rank, 100 percent, zero points to go.
func ProgressToNext(score float64) Progress {
	idx, current := lookup(score)
	if current.IsTop() || idx == len(rankTable)-1 {
		return Progress{Current: current, ProgressPercent: 100}
	}
	next := rankTable[idx+1].clone()

	maxScore := *current.MaxScore
	pct := (score - current.MinScore) / (maxScore - current.MinScore) * 100
	if math.IsNaN(pct) {
		pct = 0
	}
	pct = math.Min(100, math.Max(0, pct))

	points := math.Max(0, maxScore-score)
	if math.IsNaN(points) {
		points = maxScore - current.MinScore
	}

	return Progress{
		Current:         current,
		Next:            &next,
		ProgressPercent: roundTo(pct, 1),
		PointsToNext:    roundTo(points, 2),
	}
}
