package domain

// Typed responses of the model-backed assist operations. Each one is validated
// against a JSON schema before it reaches callers.

type ResumeATSReport struct {
	ATSScore         float64            `json:"ats_score"`
	MatchingKeywords []string           `json:"matching_keywords"`
	MissingKeywords  []string           `json:"missing_keywords"`
	FormattingIssues []string           `json:"formatting_issues"`
	SectionAnalysis  map[string]float64 `json:"section_analysis"`
	Suggestions      []string           `json:"suggestions"`
	Summary          string             `json:"summary"`
	Source           Source             `json:"source"`
}

type CodeReview struct {
	Correctness       float64  `json:"correctness"`
	TimeComplexity    string   `json:"time_complexity"`
	SpaceComplexity   string   `json:"space_complexity"`
	Bugs              []string `json:"bugs"`
	EdgeCasesMissed   []string `json:"edge_cases_missed"`
	OptimizedSolution string   `json:"optimized_solution"`
	Explanation       string   `json:"explanation"`
}

type StudyWeek struct {
	Week          int      `json:"week"`
	Focus         string   `json:"focus"`
	Tasks         []string `json:"tasks"`
	ResourceLinks []string `json:"resource_links"`
}

type StudyPlan struct {
	Title                string      `json:"title"`
	WeeklyMilestones     []StudyWeek `json:"weekly_milestones"`
	ReadinessCheckpoints []string    `json:"readiness_checkpoints"`
}

type SystemDesignReview struct {
	OverallScore          float64  `json:"overall_score"`
	Scalability           float64  `json:"scalability"`
	Components            float64  `json:"components"`
	Tradeoffs             float64  `json:"tradeoffs"`
	MissingPieces         []string `json:"missing_pieces"`
	OptimizedArchitecture string   `json:"optimized_architecture"`
	Feedback              string   `json:"feedback"`
}

type BehavioralReview struct {
	StarScore    float64 `json:"star_score"`
	Clarity      float64 `json:"clarity"`
	Relevance    float64 `json:"relevance"`
	Feedback     string  `json:"feedback"`
	SampleAnswer string  `json:"sample_answer"`
}

type CompanyPrep struct {
	InterviewRounds []string `json:"interview_rounds"`
	CoreValues      []string `json:"core_values"`
	KeyFocusAreas   []string `json:"key_focus_areas"`
	CommonQuestions []string `json:"common_questions"`
	InsiderTips     []string `json:"insider_tips"`
}

type GeneratedQuestion struct {
	Question   string `json:"q"`
	Hint       string `json:"hint"`
	Tag        string `json:"tag"`
	Difficulty string `json:"diff"`
}

type QuestionSet struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// Assist request payloads

type CodeReviewRequest struct {
	Problem  string `json:"problem" validate:"required,max=8000"`
	Code     string `json:"code" validate:"required,max=20000"`
	Language string `json:"language" validate:"required,max=40"`
}

type StudyPlanRequest struct {
	TargetRole string `json:"target_role" validate:"required,max=200"`
	Timeframe  string `json:"timeframe" validate:"max=100"`
	WeakAreas  string `json:"weak_areas" validate:"max=2000"`
}

type SystemDesignRequest struct {
	Prompt string `json:"prompt" validate:"required,max=8000"`
	Answer string `json:"answer" validate:"required,max=20000"`
}

type BehavioralRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
	Answer   string `json:"answer" validate:"required,max=20000"`
}

type CompanyPrepRequest struct {
	Company string `json:"company" validate:"required,max=200"`
	Role    string `json:"role" validate:"required,max=200"`
}

type QuestionGenRequest struct {
	Role    string `json:"role" validate:"required,max=200"`
	Type    string `json:"type" validate:"required,max=100"`
	Level   string `json:"level" validate:"required,max=100"`
	Count   int    `json:"count" validate:"min=1,max=20"`
	Company string `json:"company" validate:"max=200"`
	Topics  string `json:"topics" validate:"max=1000"`
}

type ResumeRequest struct {
	ResumeText     string `json:"resume_text" validate:"required,max=60000"`
	JobDescription string `json:"job_description" validate:"max=20000"`
}
