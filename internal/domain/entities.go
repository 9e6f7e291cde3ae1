package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrEncoding indicates the embedding/sentiment model failed. The local
	// scoring path has no fallback of its own, so this propagates unchanged.
	ErrEncoding = errors.New("encoding failed")
	// ErrRemoteService indicates the remote reasoning service errored, timed
	// out, or returned content that does not match the declared schema.
	// Callers recover by evaluating locally; it is never surfaced raw.
	ErrRemoteService = errors.New("remote service failed")
	// ErrTranscription indicates audio could not be transcribed. There is no
	// text to fall back to, so this is user-visible.
	ErrTranscription = errors.New("transcription failed")
	ErrSchemaInvalid = errors.New("schema invalid")
	ErrInternal      = errors.New("internal error")
)

// SentimentLabel enumerates the 3-class sentiment outcomes.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Sentiment is a classifier verdict: winning label plus its probability.
type Sentiment struct {
	Label SentimentLabel
	Score float64 // probability of Label, in [0,1]
}

// EvaluationRecord is the finished assessment of one answer submission.
// Immutable once returned; persisted best-effort and never mutated after.
// FinalScore is a fixed blend of the two scores; the weights differ per
// evaluation source (see usecase).
type EvaluationRecord struct {
	ID              string    `json:"id,omitempty"`
	Question        string    `json:"question"`
	UserAnswer      string    `json:"user_answer"`
	RelevanceScore  float64   `json:"relevance_score"`
	ConfidenceScore float64   `json:"confidence_score"`
	FinalScore      float64   `json:"final_score"`
	FeedbackText    string    `json:"feedback_text"`
	Strengths       []string  `json:"strengths,omitempty"`
	Improvements    []string  `json:"improvements,omitempty"`
	Source          string    `json:"source"` // "rubric" or "local"
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// Confidence grades how strongly an example answer is anchored to the resume.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Legend breaks an example answer into the four STAR phases. All four keys
// are always present so the UI can render a fixed 4-row table.
type Legend struct {
	Situation string `json:"🔴Situation"`
	Task      string `json:"🔵Task"`
	Action    string `json:"🟢Action"`
	Result    string `json:"🟣Result"`
}

// QAExample pairs a practice question with a worked example answer.
// Invariant: Answer reads as prose and never contains the literal STAR
// phase-label tokens used in Legend.
type QAExample struct {
	ExperienceName        string     `json:"experience_name"`
	ExperienceSourceQuote string     `json:"experience_source_quote"`
	Confidence            Confidence `json:"confidence"`
	Question              string     `json:"question"`
	Answer                string     `json:"answer"`
	Legend                Legend     `json:"legend"`
}

// QASection is a practice section owning questions and aligned answers.
// Cardinality law: len(Questions) == len(ExampleAnswers) == 6 and
// ExampleAnswers[i].Question == Questions[i] for all i.
type QASection struct {
	Questions      []string    `json:"questions"`
	ExampleAnswers []QAExample `json:"example_answers"`
}

// TechnicalPrep extends the Q/A section with study lists.
type TechnicalPrep struct {
	QASection
	KeyConcepts []string `json:"key_concepts"`
	RedFlags    []string `json:"red_flags"`
}

// KnowAllAboutThem collects company research bullets.
type KnowAllAboutThem struct {
	MissionValues             []string `json:"mission_values"`
	CultureSnapshot           []string `json:"culture_snapshot"`
	RecentProjectsNews        []string `json:"recent_projects_news"`
	CompetitorsIndustryTrends []string `json:"competitors_industry_trends"`
}

// ProjectHighlight names one resume project worth leading with.
type ProjectHighlight struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// PerfectFitMap maps candidate strengths onto the role.
type PerfectFitMap struct {
	TopStrengths []string           `json:"top_strengths"`
	BestProjects []ProjectHighlight `json:"best_projects"`
}

// ImprovementZone lists gaps to close before the interview.
type ImprovementZone struct {
	SkillGaps     []string `json:"skill_gaps"`
	SoftSkills    []string `json:"soft_skills"`
	LearningFocus []string `json:"learning_focus"`
}

// ImpressThemBack holds questions the candidate should ask, by category.
type ImpressThemBack struct {
	TeamCulture      []string `json:"team_culture"`
	ImpactGrowth     []string `json:"impact_growth"`
	TechnicalDepth   []string `json:"technical_depth"`
	CompanyDirection []string `json:"company_direction"`
	NextSteps        []string `json:"next_steps"`
}

// PrepReport is the normalized interview preparation report. The normalizer
// is its only writer; downstream consumers never see a document violating
// the cardinality law.
type PrepReport struct {
	Mode               string           `json:"mode"`
	CandidateName      string           `json:"candidate_name,omitempty"`
	KnowAllAboutThem   KnowAllAboutThem `json:"know_all_about_them"`
	PerfectFitMap      PerfectFitMap    `json:"perfect_fit_map"`
	BehavioralPractice QASection        `json:"behavioral_practice"`
	TechnicalPrep      TechnicalPrep    `json:"technical_prep"`
	ImprovementZone    ImprovementZone  `json:"improvement_zone"`
	ImpressThemBack    ImpressThemBack  `json:"impress_them_back"`
	DebugNote          string           `json:"debug_note,omitempty"`

	// Offline marks reports built from the fallback template rather than a
	// model response. Not part of the wire format: the upstream may echo a
	// debug_note of its own, so the note text cannot carry this signal.
	Offline bool `json:"-"`
}

// Report generation modes.
const (
	ModeRoleAndCompany = "role_and_company"
	ModeRoleFocused    = "role_focused"
)

// Question is one practice question with its reference answer.
type Question struct {
	ID          string `json:"id" yaml:"id"`
	Question    string `json:"question" yaml:"question"`
	IdealAnswer string `json:"ideal_answer" yaml:"ideal_answer"`
}

// PrepRequest carries the user inputs for report generation.
type PrepRequest struct {
	JobTitle       string
	CompanyName    string
	JobDescription string
	CandidateName  string
	ResumeText     string
}

// Ports

// ModelProvider serves the embedding and sentiment models. Constructed once
// at process start and shared; implementations must be safe for concurrent
// use and load model resources at most once.
type ModelProvider interface {
	// Embed returns one fixed-length vector per input text.
	Embed(ctx Context, texts []string) ([][]float32, error)
	// ClassifySentiment classifies text into positive/neutral/negative.
	ClassifySentiment(ctx Context, text string) (Sentiment, error)
}

// ChatClient delegates to the remote reasoning service.
type ChatClient interface {
	// ChatJSON returns the raw JSON content of a chat completion.
	ChatJSON(ctx Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Transcriber converts spoken audio into text.
type Transcriber interface {
	Transcribe(ctx Context, filename string, audio []byte) (string, error)
}

// EvaluationRepository stores finished evaluations. Write-only by design:
// the engine produces records for storage and never reads history back.
type EvaluationRepository interface {
	Create(ctx Context, rec EvaluationRecord) (string, error)
}

// ReportRepository stores finished prep and resume reports.
type ReportRepository interface {
	CreatePrep(ctx Context, req PrepRequest, report PrepReport) (string, error)
	CreateResume(ctx Context, report ResumeReport) (string, error)
}

// Context is an alias so usecases stay decoupled from adapters' imports.
type Context = context.Context
