package domain

import (
	"encoding/json"
	"time"
)

// ReadinessBreakdown keeps the raw inputs behind a readiness score.
type ReadinessBreakdown struct {
	StreakDays        int     `json:"streak_days"`
	AvgInterviewScore float64 `json:"avg_interview_score"`
	DSASolved         int     `json:"dsa_solved"`
	LatestATS         float64 `json:"latest_ats"`
	MocksCompleted    int     `json:"mocks_completed"`
}

// ReadinessScore is the per-user readiness index. One row per user,
// overwritten on every recomputation.
// Invariants: TotalScore == sum of the five weights; TotalScore in [0,100].
type ReadinessScore struct {
	UserID           string             `json:"user_id"`
	TotalScore       float64            `json:"total_score"`
	StreakWeight     float64            `json:"streak_weight"`
	EvaluationWeight float64            `json:"evaluation_weight"`
	DSAWeight        float64            `json:"dsa_weight"`
	ATSWeight        float64            `json:"ats_weight"`
	MockWeight       float64            `json:"mock_weight"`
	Breakdown        ReadinessBreakdown `json:"breakdown"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Session types recorded in interview history.
const (
	SessionPractice = "practice"
	SessionMock     = "mock"
)

// InterviewSession is one evaluated answer appended to a user's history.
type InterviewSession struct {
	ID           string
	UserID       string
	SessionType  string
	Question     string
	OverallScore float64
	Grade        Grade
	Source       Source
	Evaluation   json.RawMessage
	CreatedAt    time.Time
}

// ResumeScan is one stored ATS analysis.
type ResumeScan struct {
	ID        string
	UserID    string
	ATSScore  float64
	Report    json.RawMessage
	CreatedAt time.Time
}

// DSA submission statuses
const (
	SubmissionPassed = "passed"
	SubmissionFailed = "failed"
)

type DSASubmission struct {
	ID        string
	UserID    string
	ProblemID string
	Status    string
	CreatedAt time.Time
}
