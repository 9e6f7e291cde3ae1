package usecase

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

const resumeContextBudget = 9000

const resumeSystemPrompt = `You are NextStep.AI, an elite AI resume coach and ATS optimization expert.

Your job:
1) Read the resume text.
2) If a job description is provided, treat it as the source of truth for alignment:
   - infer what the company is screening for
   - extract keywords, tools, responsibilities, and must-have skills
   - compare them against the resume text
   - propose missing keywords and the safest, most honest ways to add them (no lying)
3) Produce premium, specific, actionable feedback.

You MUST return a single JSON object with this exact shape:

{
  "summary": "High level review of how strong this resume is for the target role.",
  "sections": {
    "overall_structure": {
      "strengths": ["...", "..."],
      "issues": ["...", "..."],
      "recommendations": ["...", "..."]
    },
    "experience": {
      "strengths": ["...", "..."],
      "issues": ["...", "..."],
      "recommendations": ["...", "..."]
    },
    "education": {
      "strengths": ["...", "..."],
      "issues": ["...", "..."],
      "recommendations": ["...", "..."]
    },
    "skills": {
      "strengths": ["...", "..."],
      "issues": ["...", "..."],
      "recommendations": ["...", "..."]
    }
  },
  "experience_bullets": {
    "rewrites": [
      {
        "original": "Original bullet from the resume",
        "improved": "Stronger, impact focused version",
        "why_it_is_better": "Short explanation of the changes"
      }
    ],
    "title_suggestions": [
      {
        "original_title": "Old job title",
        "suggested_title": "Better aligned job title",
        "reason": "Why this is a better wording"
      }
    ],
    "missing_information": [
      "Concrete, specific things that should be added to bullets (metrics, scope, tools, outcomes)."
    ]
  },
  "structure": {
    "ordering": [
      "Clear guidance on which sections should come first for this candidate.",
      "For example: Experience, Projects, Skills, Education."
    ],
    "sections_to_add_or_remove": {
      "add": [
        "Sections or subsections that would help (Projects, Summary, Skills, Certifications)."
      ],
      "remove": [
        "Sections or items that do not add value or feel redundant."
      ]
    }
  },
  "spacing_readability": {
    "scannability_score": 1 to 10 integer,
    "tips": [
      "Short, specific tips to make it easier to skim.",
      "For example: more white space, strong section headings, consistent bullet structure."
    ]
  },
  "keywords": {
    "target_role": "Target role string (echo the one provided or infer a likely one).",
    "missing_keywords": [
      "Important domain or technical keywords that are not present but should be."
    ],
    "present_keywords_to_keep": [
      "Keywords already present that are very relevant to the target role."
    ],
    "how_to_add_them": [
      "Concrete rewrite suggestions showing how to naturally inject missing keywords."
    ]
  }
}

RULES:
- Always return valid JSON only. No markdown. No extra commentary.
- Talk directly to the candidate.
- Be specific. Reference the resume text and the job description (if provided).
- Never suggest adding skills the candidate does not have. Phrase additions as honest reframes.
- Always produce at least 3 bullet rewrites if there is enough resume content.
- Missing keywords should be drawn from the job description when it exists.`

// ResumeService generates structured resume reviews with the same degrade
// policy as PrepService: upstream failures fall back to a fixed offline
// template, never to an error.
type ResumeService struct {
	chat      domain.ChatClient
	reports   domain.ReportRepository
	maxTokens int
}

func NewResumeService(chat domain.ChatClient, reports domain.ReportRepository, maxTokens int) ResumeService {
	return ResumeService{chat: chat, reports: reports, maxTokens: maxTokens}
}

// Review produces a resume report. Only an empty resume is an error.
func (s ResumeService) Review(ctx domain.Context, resumeText, targetRole, jobDescription string) (domain.ResumeReport, error) {
	if strings.TrimSpace(resumeText) == "" {
		return domain.ResumeReport{}, fmt.Errorf("%w: resume text is required", domain.ErrInvalidArgument)
	}

	report := s.review(ctx, resumeText, targetRole, jobDescription)

	if s.reports != nil {
		if _, err := s.reports.CreateResume(ctx, report); err != nil {
			slog.Default().WarnContext(ctx, "failed to persist resume report", slog.Any("error", err))
		}
	}
	return report, nil
}

func (s ResumeService) review(ctx domain.Context, resumeText, targetRole, jobDescription string) domain.ResumeReport {
	userMessage := fmt.Sprintf(
		"Create a resume feedback report in the required JSON format.\n\n"+
			"Target role (may be empty): %s\n\nJob description (may be empty):\n%s\n\nResume text:\n%s\n",
		targetRole,
		textx.Truncate(jobDescription, resumeContextBudget),
		textx.Truncate(resumeText, resumeContextBudget),
	)

	out, err := s.chat.ChatJSON(ctx, resumeSystemPrompt, userMessage, s.maxTokens)
	if err != nil {
		slog.Default().WarnContext(ctx, "resume review generation failed, using offline template",
			slog.Any("error", err))
		return offlineResumeReport(targetRole, jobDescription, "Report generation failed: "+err.Error())
	}

	var report domain.ResumeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		slog.Default().WarnContext(ctx, "resume review response unparseable, using offline template",
			slog.Any("error", err))
		return offlineResumeReport(targetRole, jobDescription, "Report generation failed: "+err.Error())
	}

	if report.Keywords.TargetRole != "" {
		report.TargetRole = report.Keywords.TargetRole
	} else {
		report.TargetRole = targetRole
	}
	report.UsedJobDescription = strings.TrimSpace(jobDescription) != ""
	if report.SpacingReadability.ScannabilityScore < 1 {
		report.SpacingReadability.ScannabilityScore = 1
	} else if report.SpacingReadability.ScannabilityScore > 10 {
		report.SpacingReadability.ScannabilityScore = 10
	}
	return report
}

func offlineResumeReport(targetRole, jobDescription, note string) domain.ResumeReport {
	role := targetRole
	if role == "" {
		role = "your target role"
	}
	usedJD := strings.TrimSpace(jobDescription) != ""

	summary := "This is a basic offline review of your resume for " + role + ". "
	if usedJD {
		summary += "A job description was provided, but offline mode cannot extract ATS keywords from it."
	} else {
		summary += "For best keyword results, paste a job description and try again later."
	}

	return domain.ResumeReport{
		TargetRole:         role,
		UsedJobDescription: usedJD,
		Summary:            summary,
		DebugNote:          note,
		Offline:            true,
		Sections: domain.ResumeSections{
			OverallStructure: domain.ResumeSection{
				Strengths:       []string{"Your resume can be organized into clear sections."},
				Issues:          []string{"The ordering might not highlight your strongest experience first."},
				Recommendations: []string{"Lead with Experience or Projects, then Skills, then Education."},
			},
			Experience: domain.ResumeSection{
				Strengths:       []string{"You likely have relevant experience that can be told with stronger bullets."},
				Issues:          []string{"Bullets may describe tasks instead of outcomes."},
				Recommendations: []string{"Rewrite bullets with scope, tools, and measurable impact."},
			},
			Education: domain.ResumeSection{
				Strengths:       []string{"Education can show technical foundation or domain knowledge."},
				Recommendations: []string{"If early career, keep Education near the top. Otherwise, let Experience lead."},
			},
			Skills: domain.ResumeSection{
				Strengths:       []string{"A skills section helps scanners quickly assess fit."},
				Issues:          []string{"Skill lists can become too long or generic."},
				Recommendations: []string{"Group skills by category and keep only role relevant items."},
			},
		},
		ExperienceBullets: domain.ExperienceBullets{
			Rewrites: []domain.BulletRewrite{
				{
					Original:     "Worked on various tasks for the company.",
					Improved:     "Delivered features across multiple projects, collaborating with a cross functional team to ship on time.",
					WhyItsBetter: "Adds scope and shows delivery and collaboration.",
				},
				{
					Original:     "Helped with data analysis.",
					Improved:     "Analyzed customer data to identify trends that informed campaign and product decisions.",
					WhyItsBetter: "Clarifies the action and the impact path.",
				},
				{
					Original:     "Assisted with software development.",
					Improved:     "Implemented and tested application features, improving reliability and reducing manual work for the team.",
					WhyItsBetter: "Uses stronger verbs and highlights outcomes.",
				},
			},
			TitleSuggestions: []domain.TitleSuggestion{
				{
					OriginalTitle:  "Worker",
					SuggestedTitle: "Operations Assistant",
					Reason:         "More specific and easier to map to job descriptions.",
				},
			},
			MissingInformation: []string{
				"Add metrics: time saved, scale, number of users, dollars, latency, accuracy, throughput.",
				"Name tools and technologies used in each bullet where relevant.",
			},
		},
		Structure: domain.ResumeStructure{
			Ordering: []string{"Recommended order: Experience, Projects, Skills, Education."},
			SectionsToAddOrRemove: domain.SectionChanges{
				Add:    []string{"Projects, if you have strong relevant work.", "A short Summary if you are switching roles."},
				Remove: []string{"Generic objective statements that do not add value."},
			},
		},
		SpacingReadability: domain.SpacingReadability{
			ScannabilityScore: 6,
			Tips:              []string{"Keep bullets to 1 to 2 lines.", "Use consistent spacing and date alignment."},
		},
		Keywords: domain.ResumeKeywords{
			TargetRole:            role,
			MissingKeywords:       []string{"Paste a job description to get exact ATS keywords."},
			PresentKeywordsToKeep: []string{"Keep the tools and skills that appear most in your target role postings."},
			HowToAddThem:          []string{"Add missing keywords by rewriting existing bullets to describe the same work with the JD vocabulary."},
		},
	}
}
