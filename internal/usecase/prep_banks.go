package usecase

import "github.com/fabio-pecora/NextStep.AI/internal/domain"

// Fixed fallback banks used by the report normalizer. The texts and their
// order are part of the product contract: topping up an incomplete report
// must be deterministic so two normalization runs of the same input agree.

var defaultBehavioralQuestions = []string{
	"Describe a time you took full ownership of a challenging project.",
	"Tell me about a time you dealt with ambiguity.",
	"Describe a time you had to learn a new technology quickly.",
	"Tell me about a time you received critical feedback and how you handled it.",
	"Give an example of a time you collaborated with cross-functional teams.",
	"How have you contributed to improving team processes or code quality?",
}

var defaultTechnicalQuestions = []string{
	"Explain how you would build a scalable backend service for processing healthcare data.",
	"How would you design an API to support high traffic while staying reliable?",
	"How do you approach database schema design and query performance optimization?",
	"How would you add observability (logs, metrics, tracing) to a production service?",
	"How do you ensure code is maintainable and testable as the system grows?",
	"How would you debug a production incident with limited information?",
}

const fallbackBehavioralAnswer = "In a challenging project, I take ownership by clarifying the goal, breaking the work into milestones, " +
	"communicating early with stakeholders, and delivering in small increments with tests. If something is unclear, " +
	"I propose a direction, validate it quickly, and adjust based on feedback so progress never stalls. The outcome " +
	"is usually faster delivery with fewer surprises and stronger trust from the team."

const fallbackTechnicalAnswer = "To handle this, I would start by clarifying requirements and constraints, then design a modular service " +
	"with clear API boundaries, efficient data access patterns, and a safe processing pipeline. I would add " +
	"validation, batching where appropriate, and caching for hot reads, then layer in observability and tests " +
	"to make it reliable under load. Finally, I would roll it out gradually and track metrics like latency, " +
	"error rate, throughput, and cost so the system can scale predictably."

var fallbackBehavioralLegend = domain.Legend{
	Situation: "A high impact project with constraints like time, complexity, and changing requirements.",
	Task:      "Own the work end to end and keep delivery on track.",
	Action:    "Plan milestones, communicate proactively, ship iteratively with quality checks.",
	Result:    "Delivered outcomes with fewer issues and clearer stakeholder alignment.",
}

var fallbackTechnicalLegend = domain.Legend{
	Situation: "A production service must process growing volumes of sensitive data with strict reliability needs.",
	Task:      "Design for scalability, correctness, and maintainability.",
	Action:    "Use modular APIs, efficient queries, batching/queues where needed, caching, and strong observability/testing.",
	Result:    "A service that scales with predictable performance and measurable reliability.",
}

// synthesizeAnswer builds the canonical fallback answer for a question that
// arrived without one. Provenance stays empty and confidence is pinned to
// "low" so the UI can mark the example as generic.
func synthesizeAnswer(question string, technical bool) domain.QAExample {
	ex := domain.QAExample{
		Confidence: domain.ConfidenceLow,
		Question:   question,
	}
	if technical {
		ex.Answer = fallbackTechnicalAnswer
		ex.Legend = fallbackTechnicalLegend
	} else {
		ex.Answer = fallbackBehavioralAnswer
		ex.Legend = fallbackBehavioralLegend
	}
	return ex
}

// Filler bullets for the section floors. Existing content always comes
// first; fillers are appended in this order until the floor is met.

var (
	missionValuesFiller   = "Mirror the company mission language in your intro and closing."
	cultureSnapshotFiller = "Bring one story that shows ownership and one that shows collaboration."
	recentProjectsFiller  = "Reference 1 or 2 recent product updates and explain why they matter."
	competitorsFiller     = "Know 2 competitors and a clear differentiation for each."
)

var (
	teamCultureFillers = []string{
		"How does the team share knowledge and review each other's work?",
		"What does a successful first 90 days look like on this team?",
	}
	impactGrowthFillers = []string{
		"What impact has the team shipped recently that you are most proud of?",
		"How do engineers here grow into broader ownership over time?",
	}
	technicalDepthFillers = []string{
		"What is the most interesting technical challenge the team is facing right now?",
		"How does the team balance shipping speed against technical debt?",
	}
	companyDirectionFillers = []string{
		"Where do you see the product heading over the next year?",
		"How do company priorities translate into this team's roadmap?",
	}
	nextStepsFillers = []string{
		"What are the next steps in the interview process?",
		"Is there anything about my background you would like me to expand on?",
	}
)

var keyConceptFillers = []string{
	"API design and versioning",
	"Data modeling and indexing",
	"Caching strategies",
	"Observability (logs, metrics, tracing)",
	"Testing strategy and CI",
	"Incident response and debugging",
}

var redFlagFillers = []string{
	"Claiming experience with tools you have never used.",
	"Giving answers with no concrete example or measurable outcome.",
	"Blaming teammates when describing past problems.",
}
