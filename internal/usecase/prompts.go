package usecase

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/fairyhunter13/interview-engine/internal/adapter/ai"
	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// systemPrompts holds the fixed system instruction of every kind.
var systemPrompts = map[ai.Kind]string{
	ai.KindEvaluation:   "You are a strict technical recruiter. Return JSON only.",
	ai.KindResumeATS:    "You are an ATS (Applicant Tracking System) expert. Analyze the resume professionally. Return JSON only.",
	ai.KindCodeReview:   "You are a senior software engineer. Review code strictly and accurately. Return JSON only.",
	ai.KindSystemDesign: "You are a Principal Architect. Evaluate the system design proposal. Return JSON only.",
	ai.KindBehavioral:   "You are a senior HR manager. Evaluate the behavioral answer based on STAR method. Return JSON only.",
	ai.KindCompanyPrep:  "You are a professional recruiter with deep knowledge of top-tier company interview loops. Return JSON only.",
	ai.KindStudyPlan:    "You are an expert career coach. Plan a highly structured curriculum. Return JSON only.",
	ai.KindQuestionGen:  "You are an expert technical interviewer. Generate professional questions. Return JSON only.",
}

var userTemplates = template.Must(template.New("prompts").Parse(`
{{define "evaluation"}}Evaluate the following interview response on 12 parameters:
(Relevance, STAR Structure, Clarity, Tone, Depth, Specificity, Vocabulary, Impact/Results, Filler Control, Pacing, Conciseness, Enthusiasm).

QUESTION: {{.Question}}
{{if .QuestionType}}QUESTION TYPE: {{.QuestionType}}
{{end}}ANSWER: {{.Answer}}
{{if .Context}}CONTEXT: {{.Context}}
{{end}}
Return a JSON object with:
- overall_score: 0-100
- dimension_scores: { relevance, star_structure, clarity, tone, depth, specificity, vocabulary, impact_results, filler_control, pacing, conciseness, enthusiasm } each 0-10
- feedback: { strengths: [], improvements: [], summary: "" }
- star_analysis: { situation: "", task: "", action: "", result: "" }
Integrate: Fillers={{.Fillers}}, Readability={{.Readability}}, STAR coverage={{.Star}}{{end}}

{{define "resume_ats"}}RESUME: {{.ResumeText}}
JOB DESCRIPTION: {{if .JobDescription}}{{.JobDescription}}{{else}}General software engineering role{{end}}

Return a JSON object with:
- ats_score: 0-100
- matching_keywords: []
- missing_keywords: []
- formatting_issues: []
- section_analysis: { experience: 0-10, projects: 0-10, skills: 0-10 }
- suggestions: []
- summary: ""{{end}}

{{define "code_review"}}PROBLEM: {{.Problem}}
LANGUAGE: {{.Language}}
CODE:
` + "```" + `{{.Language}}
{{.Code}}
` + "```" + `

Return a JSON object with:
- correctness: 0-10
- time_complexity: "O(...)"
- space_complexity: "O(...)"
- bugs: []
- edge_cases_missed: []
- optimized_solution: ""
- explanation: ""{{end}}

{{define "system_design"}}PROMPT: {{.Prompt}}
USER_ANSWER: {{.Answer}}

Return a JSON object with:
- overall_score: 0-100
- scalability: 0-10
- components: 0-10
- tradeoffs: 0-10
- missing_pieces: []
- optimized_architecture: "Description or diagram notation"
- feedback: ""{{end}}

{{define "behavioral"}}QUESTION: {{.Question}}
ANSWER: {{.Answer}}

Return a JSON object with:
- star_score: 0-100
- clarity: 0-10
- relevance: 0-10
- feedback: ""
- sample_answer: "A better version of this answer"{{end}}

{{define "company_prep"}}COMPANY: {{.Company}}
ROLE: {{.Role}}

Return a JSON object with:
- interview_rounds: []
- core_values: []
- key_focus_areas: []
- common_questions: []
- insider_tips: []{{end}}

{{define "study_plan"}}TARGET ROLE: {{.TargetRole}}
TIMEFRAME: {{if .Timeframe}}{{.Timeframe}}{{else}}4 weeks{{end}}
WEAK_AREAS: {{if .WeakAreas}}{{.WeakAreas}}{{else}}none stated{{end}}

Return a JSON object with:
- title: ""
- weekly_milestones: [{ week: 1, focus: "", tasks: [], resource_links: [] }]
- readiness_checkpoints: []{{end}}

{{define "question_gen"}}ROLE: {{.Role}}
TYPE: {{.Type}}
LEVEL: {{.Level}}
COUNT: {{.Count}}
COMPANY: {{if .Company}}{{.Company}}{{else}}Any{{end}}
TOPICS: {{if .Topics}}{{.Topics}}{{else}}Any{{end}}

Return JSON: { "questions": [ { "q": "...", "hint": "...", "tag": "...", "diff": "..." } ] }{{end}}
`))

// renderPrompt returns the system and user prompt of kind for data.
func renderPrompt(kind ai.Kind, data any) (string, string, error) {
	system, ok := systemPrompts[kind]
	if !ok {
		return "", "", fmt.Errorf("op=usecase.renderPrompt: %w: no prompt for %q", domain.ErrInvalidArgument, kind)
	}
	var b strings.Builder
	if err := userTemplates.ExecuteTemplate(&b, string(kind), data); err != nil {
		return "", "", fmt.Errorf("op=usecase.renderPrompt: %w", err)
	}
	return system, strings.TrimSpace(b.String()), nil
}

type evaluationPromptData struct {
	domain.EvaluateRequest
	Fillers     string
	Readability string
	Star        string
}

func newEvaluationPromptData(req domain.EvaluateRequest, f domain.LexicalFeatures) evaluationPromptData {
	return evaluationPromptData{
		EvaluateRequest: req,
		Fillers:         summarizeFillers(f),
		Readability:     fmt.Sprintf("%.1f (%s)", f.Readability.FleschEase, f.Readability.ReadingLevel),
		Star:            fmt.Sprintf("%d/4", f.Star.Filled()),
	}
}

func summarizeFillers(f domain.LexicalFeatures) string {
	if len(f.Fillers) == 0 {
		return "none"
	}
	hits := append([]domain.FillerHit(nil), f.Fillers...)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Count > hits[j].Count })
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("%s x%d", h.Word, h.Count))
	}
	return fmt.Sprintf("%d total (%s)", f.FillerCount, strings.Join(parts, ", "))
}
