package domain

// ResumeSection is one reviewed area of the resume.
type ResumeSection struct {
	Strengths       []string `json:"strengths"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// ResumeSections covers the four reviewed areas.
type ResumeSections struct {
	OverallStructure ResumeSection `json:"overall_structure"`
	Experience       ResumeSection `json:"experience"`
	Education        ResumeSection `json:"education"`
	Skills           ResumeSection `json:"skills"`
}

// BulletRewrite shows an original experience bullet and its stronger form.
type BulletRewrite struct {
	Original     string `json:"original"`
	Improved     string `json:"improved"`
	WhyItsBetter string `json:"why_it_is_better"`
}

// TitleSuggestion proposes a better-aligned job title.
type TitleSuggestion struct {
	OriginalTitle  string `json:"original_title"`
	SuggestedTitle string `json:"suggested_title"`
	Reason         string `json:"reason"`
}

// ExperienceBullets groups bullet-level feedback.
type ExperienceBullets struct {
	Rewrites           []BulletRewrite   `json:"rewrites"`
	TitleSuggestions   []TitleSuggestion `json:"title_suggestions"`
	MissingInformation []string          `json:"missing_information"`
}

// SectionChanges lists sections to add or remove.
type SectionChanges struct {
	Add    []string `json:"add"`
	Remove []string `json:"remove"`
}

// ResumeStructure advises on section layout.
type ResumeStructure struct {
	Ordering              []string       `json:"ordering"`
	SectionsToAddOrRemove SectionChanges `json:"sections_to_add_or_remove"`
}

// SpacingReadability scores how scannable the resume is.
type SpacingReadability struct {
	ScannabilityScore int      `json:"scannability_score"` // 1..10
	Tips              []string `json:"tips"`
}

// ResumeKeywords holds ATS keyword alignment against the job description.
type ResumeKeywords struct {
	TargetRole            string   `json:"target_role"`
	MissingKeywords       []string `json:"missing_keywords"`
	PresentKeywordsToKeep []string `json:"present_keywords_to_keep"`
	HowToAddThem          []string `json:"how_to_add_them"`
}

// ResumeReport is the structured resume review document.
type ResumeReport struct {
	TargetRole         string             `json:"target_role"`
	UsedJobDescription bool               `json:"used_job_description"`
	Summary            string             `json:"summary"`
	Sections           ResumeSections     `json:"sections"`
	ExperienceBullets  ExperienceBullets  `json:"experience_bullets"`
	Structure          ResumeStructure    `json:"structure"`
	SpacingReadability SpacingReadability `json:"spacing_readability"`
	Keywords           ResumeKeywords     `json:"keywords"`
	DebugNote          string             `json:"debug_note,omitempty"`

	// Offline marks reports built from the fallback template rather than a
	// model response. Not serialized; see PrepReport.Offline.
	Offline bool `json:"-"`
}
