package usecase

import (
	"strconv"
	"strings"

	"github.com/fabio-pecora/NextStep.AI/internal/domain"
	"github.com/fabio-pecora/NextStep.AI/pkg/textx"
)

// Every Q/A practice section carries exactly this many questions and answers.
const qaSectionSize = 6

// Soft floors for the non-Q/A sections. Existing content is always kept;
// fillers are only appended until the floor is met.
const (
	minImpressBullets     = 10
	minKnowCompanyBullets = 4
	minKeyConcepts        = 6
	minRedFlags           = 3
)

// The upstream model is instructed to keep STAR labels in the legend only.
// When it echoes them into the answer prose anyway, they are stripped.
var starLabelTokens = []string{"🔴Situation:", "🔵Task:", "🟢Action:", "🟣Result:"}

// Normalizer deterministically repairs an arbitrary document produced by the
// report-generation upstream into a PrepReport satisfying the cardinality
// law. It never fails: any shape of input maps to a well-formed report, and
// normalizing a report's own JSON again yields the identical report.
//
// Repaired, when set, is called once per structural repair with the section
// and the kind of repair applied.
type Normalizer struct {
	Repaired func(section, repair string)
}

func (n Normalizer) repair(section, kind string) {
	if n.Repaired != nil {
		n.Repaired(section, kind)
	}
}

// Normalize coerces the raw document section by section, enforces the
// exactly-six law on both practice sections, scrubs answer prose, and tops
// up the research sections to their floors.
func (n Normalizer) Normalize(raw map[string]any, req domain.PrepRequest) domain.PrepReport {
	know := asMap(raw["know_all_about_them"])
	fit := asMap(raw["perfect_fit_map"])
	beh := asMap(raw["behavioral_practice"])
	tech := asMap(raw["technical_prep"])
	imp := asMap(raw["improvement_zone"])
	itm := asMap(raw["impress_them_back"])

	mode := strings.TrimSpace(asString(raw["mode"]))
	if mode == "" {
		mode = ModeFor(req)
	}
	cname := strings.TrimSpace(asString(raw["candidate_name"]))
	if cname == "" {
		cname = req.CandidateName
	}

	report := domain.PrepReport{
		Mode:          mode,
		CandidateName: cname,
		KnowAllAboutThem: domain.KnowAllAboutThem{
			MissionValues:             stringList(know["mission_values"]),
			CultureSnapshot:           stringList(know["culture_snapshot"]),
			RecentProjectsNews:        stringList(know["recent_projects_news"]),
			CompetitorsIndustryTrends: stringList(know["competitors_industry_trends"]),
		},
		PerfectFitMap: domain.PerfectFitMap{
			TopStrengths: stringList(fit["top_strengths"]),
			BestProjects: normalizeProjects(asList(fit["best_projects"])),
		},
		BehavioralPractice: domain.QASection{
			Questions:      stringList(beh["questions"]),
			ExampleAnswers: normalizeExamples(asList(beh["example_answers"])),
		},
		TechnicalPrep: domain.TechnicalPrep{
			QASection: domain.QASection{
				Questions:      stringList(tech["questions"]),
				ExampleAnswers: normalizeExamples(asList(tech["example_answers"])),
			},
			KeyConcepts: stringList(tech["key_concepts"]),
			RedFlags:    stringList(tech["red_flags"]),
		},
		ImprovementZone: domain.ImprovementZone{
			SkillGaps:     stringList(imp["skill_gaps"]),
			SoftSkills:    stringList(imp["soft_skills"]),
			LearningFocus: stringList(imp["learning_focus"]),
		},
		ImpressThemBack: domain.ImpressThemBack{
			TeamCulture:      stringList(itm["team_culture"]),
			ImpactGrowth:     stringList(itm["impact_growth"]),
			TechnicalDepth:   stringList(itm["technical_depth"]),
			CompanyDirection: stringList(itm["company_direction"]),
			NextSteps:        stringList(itm["next_steps"]),
		},
		DebugNote: strings.TrimSpace(asString(raw["debug_note"])),
	}

	n.enforceSection("behavioral_practice", &report.BehavioralPractice, defaultBehavioralQuestions, false)
	n.enforceSection("technical_prep", &report.TechnicalPrep.QASection, defaultTechnicalQuestions, true)
	n.applyFloors(&report)
	return report
}

// OfflineReport builds the template report used when the upstream call
// failed entirely. It passes through the same cardinality enforcement and
// floors as the online path, so the exactly-six law holds in both modes.
func (n Normalizer) OfflineReport(req domain.PrepRequest, note string) domain.PrepReport {
	if note == "" {
		note = "Offline mode: using a basic template report."
	}
	report := domain.PrepReport{
		Mode:          ModeFor(req),
		CandidateName: req.CandidateName,
		DebugNote:     note,
		Offline:       true,
		KnowAllAboutThem: domain.KnowAllAboutThem{
			MissionValues:             []string{missionValuesFiller},
			CultureSnapshot:           []string{cultureSnapshotFiller},
			RecentProjectsNews:        []string{recentProjectsFiller},
			CompetitorsIndustryTrends: []string{competitorsFiller},
		},
		PerfectFitMap: domain.PerfectFitMap{
			TopStrengths: []string{"Ownership", "Full stack delivery"},
		},
	}
	n.enforceSection("behavioral_practice", &report.BehavioralPractice, defaultBehavioralQuestions, false)
	n.enforceSection("technical_prep", &report.TechnicalPrep.QASection, defaultTechnicalQuestions, true)
	n.applyFloors(&report)
	return report
}

// ModeFor reports the generation mode implied by the request: company
// research is only possible when both a company name and a job description
// were supplied.
func ModeFor(req domain.PrepRequest) string {
	if req.CompanyName != "" && strings.TrimSpace(req.JobDescription) != "" {
		return domain.ModeRoleAndCompany
	}
	return domain.ModeRoleFocused
}

// enforceSection makes a Q/A section satisfy the cardinality law: exactly
// qaSectionSize questions, topped up from the fixed bank, with a one-to-one
// answer per question in the same order. Existing answers are matched by
// question text; unmatched questions get a synthesized fallback answer.
func (n Normalizer) enforceSection(name string, sec *domain.QASection, bank []string, technical bool) {
	qs := make([]string, 0, len(sec.Questions)+len(bank))
	qs = append(qs, sec.Questions...)
	qs = append(qs, bank...)
	qs = qs[:qaSectionSize]
	if len(sec.Questions) != qaSectionSize {
		n.repair(name, "question_topup")
	}

	byQuestion := make(map[string]domain.QAExample, len(sec.ExampleAnswers))
	for _, ex := range sec.ExampleAnswers {
		if q := strings.TrimSpace(ex.Question); q != "" {
			byQuestion[q] = ex
		}
	}

	answers := make([]domain.QAExample, 0, qaSectionSize)
	for _, q := range qs {
		ex, ok := byQuestion[strings.TrimSpace(q)]
		if !ok {
			n.repair(name, "answer_synthesized")
			answers = append(answers, synthesizeAnswer(q, technical))
			continue
		}
		ex.Question = q
		if scrubbed := scrubAnswer(ex.Answer); scrubbed != ex.Answer {
			n.repair(name, "star_scrub")
			ex.Answer = scrubbed
		}
		if !validConfidence(ex.Confidence) {
			n.repair(name, "confidence_default")
			ex.Confidence = domain.ConfidenceLow
		}
		answers = append(answers, ex)
	}

	sec.Questions = qs
	sec.ExampleAnswers = answers
}

// scrubAnswer strips STAR label tokens out of answer prose and collapses the
// whitespace they leave behind. Idempotent.
func scrubAnswer(text string) string {
	for _, token := range starLabelTokens {
		text = strings.ReplaceAll(text, token, "")
	}
	return textx.CollapseSpaces(text)
}

func (n Normalizer) applyFloors(r *domain.PrepReport) {
	know := &r.KnowAllAboutThem
	knowTotal := len(know.MissionValues) + len(know.CultureSnapshot) +
		len(know.RecentProjectsNews) + len(know.CompetitorsIndustryTrends)
	for _, f := range []struct {
		dst    *[]string
		filler string
	}{
		{&know.MissionValues, missionValuesFiller},
		{&know.CultureSnapshot, cultureSnapshotFiller},
		{&know.RecentProjectsNews, recentProjectsFiller},
		{&know.CompetitorsIndustryTrends, competitorsFiller},
	} {
		if knowTotal >= minKnowCompanyBullets {
			break
		}
		if appendUnique(f.dst, f.filler) {
			n.repair("know_all_about_them", "floor_fill")
			knowTotal++
		}
	}

	itm := &r.ImpressThemBack
	itmTotal := len(itm.TeamCulture) + len(itm.ImpactGrowth) + len(itm.TechnicalDepth) +
		len(itm.CompanyDirection) + len(itm.NextSteps)
	for _, f := range []struct {
		dst     *[]string
		fillers []string
	}{
		{&itm.TeamCulture, teamCultureFillers},
		{&itm.ImpactGrowth, impactGrowthFillers},
		{&itm.TechnicalDepth, technicalDepthFillers},
		{&itm.CompanyDirection, companyDirectionFillers},
		{&itm.NextSteps, nextStepsFillers},
	} {
		for _, filler := range f.fillers {
			if itmTotal >= minImpressBullets {
				break
			}
			if appendUnique(f.dst, filler) {
				n.repair("impress_them_back", "floor_fill")
				itmTotal++
			}
		}
	}

	tech := &r.TechnicalPrep
	for _, filler := range keyConceptFillers {
		if len(tech.KeyConcepts) >= minKeyConcepts {
			break
		}
		if appendUnique(&tech.KeyConcepts, filler) {
			n.repair("technical_prep", "floor_fill")
		}
	}
	for _, filler := range redFlagFillers {
		if len(tech.RedFlags) >= minRedFlags {
			break
		}
		if appendUnique(&tech.RedFlags, filler) {
			n.repair("technical_prep", "floor_fill")
		}
	}
}

// appendUnique appends the filler only if it is not already present, which
// keeps floor top-ups idempotent.
func appendUnique(dst *[]string, filler string) bool {
	for _, s := range *dst {
		if s == filler {
			return false
		}
	}
	*dst = append(*dst, filler)
	return true
}

func validConfidence(c domain.Confidence) bool {
	switch c {
	case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		return true
	}
	return false
}

func normalizeProjects(items []any) []domain.ProjectHighlight {
	out := make([]domain.ProjectHighlight, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		title := strings.TrimSpace(asString(m["title"]))
		summary := strings.TrimSpace(asString(m["summary"]))
		if title == "" && summary == "" {
			continue
		}
		if title == "" {
			title = "Project highlight"
		}
		out = append(out, domain.ProjectHighlight{Title: title, Summary: summary})
	}
	return out
}

// normalizeExamples coerces the raw example list, keeping only entries with
// at least a question or an answer.
func normalizeExamples(items []any) []domain.QAExample {
	out := make([]domain.QAExample, 0, len(items))
	for _, it := range items {
		m := asMap(it)
		q := strings.TrimSpace(asString(m["question"]))
		a := strings.TrimSpace(asString(m["answer"]))
		if q == "" && a == "" {
			continue
		}
		conf := domain.Confidence(strings.ToLower(strings.TrimSpace(asString(m["confidence"]))))
		if !validConfidence(conf) {
			conf = domain.ConfidenceLow
		}
		legend := asMap(m["legend"])
		out = append(out, domain.QAExample{
			ExperienceName:        strings.TrimSpace(asString(m["experience_name"])),
			ExperienceSourceQuote: strings.TrimSpace(asString(m["experience_source_quote"])),
			Confidence:            conf,
			Question:              q,
			Answer:                a,
			Legend: domain.Legend{
				Situation: strings.TrimSpace(asString(legend["🔴Situation"])),
				Task:      strings.TrimSpace(asString(legend["🔵Task"])),
				Action:    strings.TrimSpace(asString(legend["🟢Action"])),
				Result:    strings.TrimSpace(asString(legend["🟣Result"])),
			},
		})
	}
	return out
}

// Coercion helpers. The upstream document is duck-typed; every accessor
// below maps a wrong-shaped value onto the expected zero shape so the rest
// of the normalizer never branches on type.

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asList wraps a bare scalar in a single-element list, mirroring how the
// upstream sometimes returns one item where a list was asked for.
func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// asString stringifies scalar values; composite values coerce to "".
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func stringList(v any) []string {
	items := asList(v)
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
