package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

// Resume and job-description text sent upstream is truncated to keep token
// usage bounded regardless of upload size.
const prepContextBudget = 12000

const prepSystemPrompt = `You are NextStep.AI, an elite AI career strategist and interview coach.

Goal:
Create a premium, structured interview preparation report for a candidate using:
- Resume text
- Job title
- Company name (optional)
- Job description (optional)

You MUST return a single JSON object with this exact shape:

{
  "mode": "role_and_company" or "role_focused",
  "candidate_name": "Optional string, if provided",
  "know_all_about_them": {
    "mission_values": ["...", "..."],
    "culture_snapshot": ["...", "..."],
    "recent_projects_news": ["...", "..."],
    "competitors_industry_trends": ["...", "..."]
  },
  "perfect_fit_map": {
    "top_strengths": ["...", "..."],
    "best_projects": [
      {"title": "...", "summary": "..."}
    ]
  },
  "behavioral_practice": {
    "questions": ["...", "..."],
    "example_answers": [
      {
        "experience_name": "Company or project name that appears in the resume text, or empty string if not available",
        "experience_source_quote": "Short exact phrase from resume proving it exists, or empty string",
        "confidence": "high" or "medium" or "low",
        "question": "...",
        "answer": "...",
        "legend": {"🔴Situation":"...","🔵Task":"...","🟢Action":"...","🟣Result":"..."}
      }
    ]
  },
  "technical_prep": {
    "questions": ["...", "..."],
    "example_answers": [
      {
        "experience_name": "Company or project name that appears in the resume text, or empty string if not available",
        "experience_source_quote": "Short exact phrase from resume proving it exists, or empty string",
        "confidence": "high" or "medium" or "low",
        "question": "...",
        "answer": "...",
        "legend": {"🔴Situation":"...","🔵Task":"...","🟢Action":"...","🟣Result":"..."}
      }
    ],
    "key_concepts": ["...", "..."],
    "red_flags": ["...", "..."]
  },
  "improvement_zone": {
    "skill_gaps": ["...", "..."],
    "soft_skills": ["...", "..."],
    "learning_focus": ["...", "..."]
  },
  "impress_them_back": {
    "team_culture": ["...", "..."],
    "impact_growth": ["...", "..."],
    "technical_depth": ["...", "..."],
    "company_direction": ["...", "..."],
    "next_steps": ["...", "..."]
  }
}

Hard rules:
- Return valid JSON only. No markdown. No extra commentary.
- Talk directly to the candidate.
- Use the job description as the source of truth when provided.
- Never suggest claiming skills the candidate does not have. Suggest honest reframes or learning actions.
- mode should be "role_and_company" when company_name and job_description exist, else "role_focused".
- Do not invent company names. If you cannot tie an answer to a real resume experience, leave experience_name empty,
  leave experience_source_quote empty, and set confidence to "low".

Behavioral requirements:
- Provide EXACTLY 6 behavioral questions.
- Provide EXACTLY 6 behavioral example_answers (one per question, in the same order).
- The answer should be a coherent paragraph (not labeled lines).
- Legend is for learning only and should summarize the S/T/A/R components.

Technical requirements:
- Provide EXACTLY 6 technical questions.
- Provide EXACTLY 6 technical example_answers (one per question, in the same order).
- The answer must be a coherent paragraph in full sentences.
  DO NOT write: "🔴Situation: ... 🔵Task: ..." in the answer text.
  Instead, write like: "To design X, I would ensure Y by doing Z..."
- Legend is for learning only and should summarize the S/T/A/R components, but not be copied verbatim into the answer.

Know their world requirements:
- Provide at least 4 items total across mission_values + culture_snapshot + recent_projects_news + competitors_industry_trends.

Questions to ask requirements:
- Provide at least 10 total questions across impress_them_back categories, spread across categories.

Keep list items short and scannable.`

// PrepService generates interview preparation reports. The upstream call may
// fail or return garbage; the normalizer guarantees the caller still gets a
// well-formed report either way.
type PrepService struct {
	chat       domain.ChatClient
	normalizer Normalizer
	reports    domain.ReportRepository
	maxTokens  int
}

func NewPrepService(chat domain.ChatClient, reports domain.ReportRepository, maxTokens int) PrepService {
	return PrepService{chat: chat, reports: reports, maxTokens: maxTokens}
}

// WithNormalizer returns a copy of the service using n, so callers can
// attach a repair hook.
func (s PrepService) WithNormalizer(n Normalizer) PrepService {
	s.normalizer = n
	return s
}

// Generate produces a normalized prep report for the request. It only fails
// on invalid input; upstream failures degrade to the offline template.
func (s PrepService) Generate(ctx domain.Context, req domain.PrepRequest) (domain.PrepReport, error) {
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	if req.JobTitle == "" {
		return domain.PrepReport{}, fmt.Errorf("%w: job_title is required", domain.ErrInvalidArgument)
	}

	report := s.generate(ctx, req)

	if s.reports != nil {
		if _, err := s.reports.CreatePrep(ctx, req, report); err != nil {
			slog.Default().WarnContext(ctx, "failed to persist prep report", slog.Any("error", err))
		}
	}
	return report, nil
}

func (s PrepService) generate(ctx domain.Context, req domain.PrepRequest) domain.PrepReport {
	out, err := s.chat.ChatJSON(ctx, prepSystemPrompt, buildPrepUserMessage(req), s.maxTokens)
	if err != nil {
		slog.Default().WarnContext(ctx, "prep report generation failed, using offline template",
			slog.Any("error", err))
		return s.normalizer.OfflineReport(req, "Report generation failed, fallback mode used. Error: "+err.Error())
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		slog.Default().WarnContext(ctx, "prep report response unparseable, using offline template",
			slog.Any("error", err))
		return s.normalizer.OfflineReport(req, "Report generation failed, fallback mode used. Error: "+err.Error())
	}
	return s.normalizer.Normalize(raw, req)
}

func buildPrepUserMessage(req domain.PrepRequest) string {
	return fmt.Sprintf(
		"Create an interview preparation report in the required JSON format.\n\n"+
			"Job title: %s\nCompany name (may be empty): %s\nCandidate name (may be empty): %s\nMode hint: %s\n\n"+
			"Job description (may be empty):\n%s\n\nResume text:\n%s\n",
		req.JobTitle,
		req.CompanyName,
		req.CandidateName,
		ModeFor(req),
		textx.Truncate(req.JobDescription, prepContextBudget),
		textx.Truncate(req.ResumeText, prepContextBudget),
	)
}
