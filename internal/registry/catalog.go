package registry

import "github.com/rebeliceyang/surveylens/internal/models"

// Sections in display order.
const (
	SectionRespondents  = "Respondents"
	SectionSkills       = "Skills"
	SectionDeployment   = "Deployment"
	SectionUsage        = "Usage"
	SectionSatisfaction = "Satisfaction"
	SectionFeedback     = "Feedback"
)

var defaultCharts = []models.ChartSpec{
	{ID: "experience", Heading: "Experience", Section: SectionRespondents, QuestionID: "ElR6d2", Kind: models.ChartBar},
	{ID: "purpose", Heading: "Primary purpose", Section: SectionRespondents, QuestionID: "pX4mQ1", Kind: models.ChartBar, MultiSelect: true},
	{ID: "org-size", Heading: "Organization size", Section: SectionRespondents, QuestionID: "Gq8Lz3", Kind: models.ChartBar},
	{ID: "industry", Heading: "Industry", Section: SectionRespondents, QuestionID: "Vb2Kt7", Kind: models.ChartBar},
	{ID: "influence", Heading: "Influence on tooling decisions", Section: SectionRespondents, QuestionID: "Hn5Rw9", Kind: models.ChartBar},
	{ID: "email-domain", Heading: "Email domain", Section: SectionRespondents, QuestionID: "Pe2Gc0", Kind: models.ChartBar},
	{ID: "world-map", Heading: "Where respondents are", Section: SectionRespondents, QuestionID: GeographyQuestionID, Kind: models.ChartMap},
	{ID: "role", Heading: "Job role", Section: SectionRespondents, QuestionID: "Jb7Ro2", Kind: models.ChartBar},

	{ID: "programming", Heading: "Programming comfort", Section: SectionSkills, QuestionID: "Cz3Yp6", Kind: models.ChartBar},
	{ID: "complexity", Heading: "Flow complexity", Section: SectionSkills, QuestionID: "Mf7Dq4", Kind: models.ChartBar},
	{ID: "languages", Heading: "Languages used in function nodes", Section: SectionSkills, QuestionID: "Lg3Fn8", Kind: models.ChartBar, MultiSelect: true},
	{ID: "learning", Heading: "How you learned", Section: SectionSkills, QuestionID: "Ln6Hw1", Kind: models.ChartBar, MultiSelect: true},

	{ID: "production", Heading: "Production use", Section: SectionDeployment, QuestionID: "Tj1Ns8", Kind: models.ChartBar},
	{ID: "instances", Heading: "Instances run", Section: SectionDeployment, QuestionID: "Wk6Be2", Kind: models.ChartBar},
	{ID: "environment", Heading: "Deployment environment", Section: SectionDeployment, QuestionID: "Ys4Ha3", Kind: models.ChartBar, MultiSelect: true},
	{ID: "version", Heading: "Version in use", Section: SectionDeployment, QuestionID: "Vr2Us9", Kind: models.ChartBar},
	{ID: "storage", Heading: "Context storage", Section: SectionDeployment, QuestionID: "St5Cx4", Kind: models.ChartBar, MultiSelect: true},
	{ID: "upgrades", Heading: "Upgrade cadence", Section: SectionDeployment, QuestionID: "Up8Cd3", Kind: models.ChartBar},

	{ID: "use-cases", Heading: "Use cases", Section: SectionUsage, QuestionID: "Rd9Fu5", Kind: models.ChartBar, MultiSelect: true},
	{ID: "protocols", Heading: "Protocols integrated", Section: SectionUsage, QuestionID: "Pr4Tc7", Kind: models.ChartBar, MultiSelect: true},
	{ID: "dashboards", Heading: "Dashboard tooling", Section: SectionUsage, QuestionID: "Db1Tl6", Kind: models.ChartBar, MultiSelect: true},
	{ID: "ai-usage", Heading: "AI features used", Section: SectionUsage, QuestionID: "Ai9Ft2", Kind: models.ChartBar, MultiSelect: true},

	{ID: "overall-rating", Heading: "Overall satisfaction", Section: SectionSatisfaction, QuestionID: "Ov5Rt1", Kind: models.ChartRating},
	{ID: "recommend", Heading: "Likelihood to recommend", Section: SectionSatisfaction, QuestionID: "Nps0Lk", Kind: models.ChartRating},
	{
		ID: "feature-ratings", Heading: "Feature ratings", Section: SectionSatisfaction, QuestionID: "Fr3Mx0", Kind: models.ChartMatrix,
		Rows: []string{"Fr3Ed1", "Fr3Db2", "Fr3Dc3", "Fr3Pl4", "Fr3Pf5"},
	},
	{
		ID: "pain-points", Heading: "Pain point severity", Section: SectionSatisfaction, QuestionID: "Pp6Mx0", Kind: models.ChartMatrix,
		Rows: []string{"Pp6Dg1", "Pp6Vc2", "Pp6Sc3", "Pp6Tb4"},
	},

	{ID: "challenges", Heading: "Biggest challenges", Section: SectionFeedback, QuestionID: "Ch2Th8", Kind: models.ChartThemes},
	{ID: "wishlist", Heading: "Feature wishlist", Section: SectionFeedback, QuestionID: "Wl7Th4", Kind: models.ChartThemes},
	{ID: "praise", Heading: "What works well", Section: SectionFeedback, QuestionID: "Pw1Th5", Kind: models.ChartThemes},
	{ID: "community", Heading: "Community resources used", Section: SectionFeedback, QuestionID: "Cm4Rs6", Kind: models.ChartBar, MultiSelect: true},
}
