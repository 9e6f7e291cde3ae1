package usecase

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

var normReq = domain.PrepRequest{
	JobTitle:       "Backend Engineer",
	CompanyName:    "Acme",
	JobDescription: "Build services.",
	CandidateName:  "Jordan",
}

func assertCardinality(t *testing.T, r domain.PrepReport) {
	t.Helper()
	require.Len(t, r.BehavioralPractice.Questions, qaSectionSize)
	require.Len(t, r.BehavioralPractice.ExampleAnswers, qaSectionSize)
	require.Len(t, r.TechnicalPrep.Questions, qaSectionSize)
	require.Len(t, r.TechnicalPrep.ExampleAnswers, qaSectionSize)
	for i, ex := range r.BehavioralPractice.ExampleAnswers {
		assert.Equal(t, r.BehavioralPractice.Questions[i], ex.Question)
	}
	for i, ex := range r.TechnicalPrep.ExampleAnswers {
		assert.Equal(t, r.TechnicalPrep.Questions[i], ex.Question)
	}
}

func TestNormalize_EmptyDocumentStillSatisfiesCardinality(t *testing.T) {
	t.Parallel()
	r := Normalizer{}.Normalize(map[string]any{}, normReq)

	assertCardinality(t, r)
	assert.Equal(t, defaultBehavioralQuestions, r.BehavioralPractice.Questions)
	assert.Equal(t, defaultTechnicalQuestions, r.TechnicalPrep.Questions)
	for _, ex := range r.BehavioralPractice.ExampleAnswers {
		assert.Equal(t, domain.ConfidenceLow, ex.Confidence)
		assert.Empty(t, ex.ExperienceName)
		assert.Empty(t, ex.ExperienceSourceQuote)
		assert.NotEmpty(t, ex.Answer)
	}
}

func TestNormalize_QuestionCountsConvergeToSix(t *testing.T) {
	t.Parallel()
	for _, count := range []int{0, 3, 6, 9} {
		count := count
		t.Run(fmt.Sprintf("%d questions", count), func(t *testing.T) {
			t.Parallel()
			qs := make([]any, count)
			for i := range qs {
				qs[i] = fmt.Sprintf("Custom question %d?", i)
			}
			raw := map[string]any{
				"behavioral_practice": map[string]any{"questions": qs},
			}
			r := Normalizer{}.Normalize(raw, normReq)
			assertCardinality(t, r)

			// existing questions keep their order; the bank tops up the rest
			keep := count
			if keep > qaSectionSize {
				keep = qaSectionSize
			}
			for i := 0; i < keep; i++ {
				assert.Equal(t, fmt.Sprintf("Custom question %d?", i), r.BehavioralPractice.Questions[i])
			}
			for i := keep; i < qaSectionSize; i++ {
				assert.Equal(t, defaultBehavioralQuestions[i-keep], r.BehavioralPractice.Questions[i])
			}
		})
	}
}

func TestNormalize_AlignsAnswersByQuestionText(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"technical_prep": map[string]any{
			"questions": []any{"How do you scale reads?", "How do you shard writes?"},
			"example_answers": []any{
				map[string]any{
					"question":   "How do you shard writes?",
					"answer":     "Partition by tenant id.",
					"confidence": "HIGH",
					"experience_name":         "Acme",
					"experience_source_quote": "scaled the billing service",
				},
			},
		},
	}

	r := Normalizer{}.Normalize(raw, normReq)
	assertCardinality(t, r)

	matched := r.TechnicalPrep.ExampleAnswers[1]
	assert.Equal(t, "How do you shard writes?", matched.Question)
	assert.Equal(t, "Partition by tenant id.", matched.Answer)
	assert.Equal(t, domain.ConfidenceHigh, matched.Confidence)
	assert.Equal(t, "Acme", matched.ExperienceName)

	// the unmatched question gets a synthesized answer
	synth := r.TechnicalPrep.ExampleAnswers[0]
	assert.Equal(t, "How do you scale reads?", synth.Question)
	assert.Equal(t, domain.ConfidenceLow, synth.Confidence)
	assert.Empty(t, synth.ExperienceName)
	assert.Equal(t, fallbackTechnicalAnswer, synth.Answer)
}

func TestNormalize_ScrubsStarTokensFromAnswers(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"behavioral_practice": map[string]any{
			"questions": []any{"Tell me about a conflict."},
			"example_answers": []any{
				map[string]any{
					"question": "Tell me about a conflict.",
					"answer":   "🔴Situation: we disagreed.   🔵Task: align.  🟢Action: talked. 🟣Result: shipped.",
				},
			},
		},
	}

	r := Normalizer{}.Normalize(raw, normReq)
	got := r.BehavioralPractice.ExampleAnswers[0].Answer
	for _, token := range starLabelTokens {
		assert.NotContains(t, got, token)
	}
	assert.Equal(t, "we disagreed. align. talked. shipped.", got)
}

func TestNormalize_CompletesLegendKeys(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"behavioral_practice": map[string]any{
			"questions": []any{"Q1"},
			"example_answers": []any{
				map[string]any{
					"question": "Q1",
					"answer":   "An answer.",
					"legend":   map[string]any{"🔴Situation": "  tight deadline  "},
				},
			},
		},
	}

	r := Normalizer{}.Normalize(raw, normReq)
	legend := r.BehavioralPractice.ExampleAnswers[0].Legend
	assert.Equal(t, "tight deadline", legend.Situation)
	assert.Empty(t, legend.Task)
	assert.Empty(t, legend.Action)
	assert.Empty(t, legend.Result)
}

func TestNormalize_LegendMarshalsWithEmojiKeys(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(domain.Legend{Situation: "s", Task: "t", Action: "a", Result: "r"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"🔴Situation":"s","🔵Task":"t","🟢Action":"a","🟣Result":"r"}`, string(b))
}

func TestNormalize_CoercesWrongShapes(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"mode":                "",
		"know_all_about_them": "not a dict",
		"technical_prep": map[string]any{
			"questions":    "a single question",
			"key_concepts": []any{nil, 42.0, "  indexing  ", true, ""},
			"red_flags":    nil,
		},
		"perfect_fit_map": map[string]any{
			"top_strengths": []any{"Ownership"},
			"best_projects": []any{
				"not a dict",
				map[string]any{"summary": "shipped the billing rewrite"},
				map[string]any{"title": "", "summary": ""},
			},
		},
		"improvement_zone": []any{"wrong type"},
	}

	r := Normalizer{}.Normalize(raw, normReq)

	assertCardinality(t, r)
	assert.Equal(t, "a single question", r.TechnicalPrep.Questions[0])
	assert.Contains(t, r.TechnicalPrep.KeyConcepts, "42")
	assert.Contains(t, r.TechnicalPrep.KeyConcepts, "indexing")
	assert.Contains(t, r.TechnicalPrep.KeyConcepts, "true")
	require.Len(t, r.PerfectFitMap.BestProjects, 1)
	assert.Equal(t, "Project highlight", r.PerfectFitMap.BestProjects[0].Title)
	assert.Equal(t, "shipped the billing rewrite", r.PerfectFitMap.BestProjects[0].Summary)
	assert.Equal(t, domain.ModeRoleAndCompany, r.Mode)
	assert.Equal(t, "Jordan", r.CandidateName)
}

func TestNormalize_SectionFloors(t *testing.T) {
	t.Parallel()
	r := Normalizer{}.Normalize(map[string]any{}, normReq)

	knowTotal := len(r.KnowAllAboutThem.MissionValues) +
		len(r.KnowAllAboutThem.CultureSnapshot) +
		len(r.KnowAllAboutThem.RecentProjectsNews) +
		len(r.KnowAllAboutThem.CompetitorsIndustryTrends)
	assert.GreaterOrEqual(t, knowTotal, minKnowCompanyBullets)

	itmTotal := len(r.ImpressThemBack.TeamCulture) +
		len(r.ImpressThemBack.ImpactGrowth) +
		len(r.ImpressThemBack.TechnicalDepth) +
		len(r.ImpressThemBack.CompanyDirection) +
		len(r.ImpressThemBack.NextSteps)
	assert.GreaterOrEqual(t, itmTotal, minImpressBullets)

	assert.GreaterOrEqual(t, len(r.TechnicalPrep.KeyConcepts), minKeyConcepts)
	assert.GreaterOrEqual(t, len(r.TechnicalPrep.RedFlags), minRedFlags)
}

func TestNormalize_FloorsPreferExistingContent(t *testing.T) {
	t.Parallel()
	concepts := make([]any, 8)
	for i := range concepts {
		concepts[i] = fmt.Sprintf("concept %d", i)
	}
	raw := map[string]any{
		"technical_prep": map[string]any{"key_concepts": concepts},
	}

	r := Normalizer{}.Normalize(raw, normReq)
	require.Len(t, r.TechnicalPrep.KeyConcepts, 8)
	assert.Equal(t, "concept 0", r.TechnicalPrep.KeyConcepts[0])
	for _, filler := range keyConceptFillers {
		assert.NotContains(t, r.TechnicalPrep.KeyConcepts, filler)
	}
}

func TestNormalize_IsIdempotent(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"mode":           "role_focused",
		"candidate_name": "Sam",
		"behavioral_practice": map[string]any{
			"questions": []any{"Q about ownership?", "Q about conflict?"},
			"example_answers": []any{
				map[string]any{
					"question":   "Q about conflict?",
					"answer":     "🔴Situation: we disagreed and then   aligned.",
					"confidence": "medium",
				},
			},
		},
		"technical_prep": map[string]any{
			"questions":    []any{"How would you cache hot reads?"},
			"key_concepts": []any{"caching"},
		},
		"impress_them_back": map[string]any{
			"team_culture": []any{"How are decisions made?"},
		},
		"debug_note": "partial upstream output",
	}

	first := Normalizer{}.Normalize(raw, normReq)
	assertCardinality(t, first)

	b, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(b, &roundTrip))

	second := Normalizer{}.Normalize(roundTrip, normReq)
	assert.Equal(t, first, second)
}

func TestOfflineReport_SatisfiesCardinalityAndFloors(t *testing.T) {
	t.Parallel()
	r := Normalizer{}.OfflineReport(normReq, "")

	assertCardinality(t, r)
	assert.Equal(t, "Offline mode: using a basic template report.", r.DebugNote)
	assert.Equal(t, domain.ModeRoleAndCompany, r.Mode)
	assert.Equal(t, []string{"Ownership", "Full stack delivery"}, r.PerfectFitMap.TopStrengths)
	assert.GreaterOrEqual(t, len(r.TechnicalPrep.KeyConcepts), minKeyConcepts)

	secondPass := Normalizer{}.OfflineReport(normReq, "")
	assert.Equal(t, r, secondPass)
}

func TestNormalize_ReportsRepairsThroughHook(t *testing.T) {
	t.Parallel()
	repairs := map[string]int{}
	n := Normalizer{Repaired: func(section, repair string) {
		repairs[section+"/"+repair]++
	}}

	raw := map[string]any{
		"behavioral_practice": map[string]any{
			"questions": []any{"Q about conflict?"},
			"example_answers": []any{
				map[string]any{
					"question":   "Q about conflict?",
					"answer":     "🔴Situation: we disagreed.",
					"confidence": "certainly",
				},
			},
		},
	}
	n.Normalize(raw, normReq)

	assert.Equal(t, 1, repairs["behavioral_practice/question_topup"])
	assert.Equal(t, 1, repairs["behavioral_practice/star_scrub"])
	assert.Equal(t, 1, repairs["behavioral_practice/confidence_default"])
	assert.Equal(t, 5, repairs["behavioral_practice/answer_synthesized"])
	assert.Equal(t, 6, repairs["technical_prep/answer_synthesized"])
	assert.NotZero(t, repairs["impress_them_back/floor_fill"])
	assert.NotZero(t, repairs["know_all_about_them/floor_fill"])
}

func TestModeFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.ModeRoleAndCompany, ModeFor(normReq))
	assert.Equal(t, domain.ModeRoleFocused, ModeFor(domain.PrepRequest{JobTitle: "SRE"}))
	assert.Equal(t, domain.ModeRoleFocused, ModeFor(domain.PrepRequest{JobTitle: "SRE", CompanyName: "Acme", JobDescription: "   "}))
}
