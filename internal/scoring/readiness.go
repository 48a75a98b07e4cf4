package scoring

import (
	"time"

	"github.com/fairyhunter13/interview-engine/internal/config"
	"github.com/fairyhunter13/interview-engine/internal/domain"
	"github.com/fairyhunter13/interview-engine/pkg/numx"
)

// AggregateReadiness weighs the raw history signals into a 0-100 index.
// Each component is rounded to two decimals and the total is their sum.
func AggregateReadiness(p config.ReadinessParams, userID string, b domain.ReadinessBreakdown, now time.Time) domain.ReadinessScore {
	streak := numx.Round(p.StreakWeight*capped(float64(b.StreakDays), float64(p.StreakCapDays)), 2)
	eval := numx.Round(p.EvaluationWeight*numx.Clamp(b.AvgInterviewScore, 0, 100)/100, 2)
	dsa := numx.Round(p.DSAWeight*capped(float64(b.DSASolved), float64(p.DSACap)), 2)
	ats := numx.Round(p.ATSWeight*numx.Clamp(b.LatestATS, 0, 100)/100, 2)
	mock := numx.Round(p.MockWeight*capped(float64(b.MocksCompleted), float64(p.MockCap)), 2)

	total := numx.Clamp(numx.Round(streak+eval+dsa+ats+mock, 2), 0, 100)
	return domain.ReadinessScore{
		UserID:           userID,
		TotalScore:       total,
		StreakWeight:     streak,
		EvaluationWeight: eval,
		DSAWeight:        dsa,
		ATSWeight:        ats,
		MockWeight:       mock,
		Breakdown:        b,
		UpdatedAt:        now,
	}
}

// capped returns min(n, limit)/limit, floored at zero.
func capped(n, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return numx.Clamp(n, 0, limit) / limit
}

// StreakDays counts consecutive practice days ending today. A streak that has
// not yet been extended today still counts, starting from yesterday. Days are
// compared as UTC calendar dates; duplicates are ignored.
func StreakDays(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[dayKey(d)] = struct{}{}
	}
	cursor := today.UTC()
	if _, ok := set[dayKey(cursor)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}
	n := 0
	for {
		if _, ok := set[dayKey(cursor)]; !ok {
			return n
		}
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

func dayKey(t time.Time) string { return t.UTC().Format(time.DateOnly) }
