package registry

import "github.com/rebeliceyang/surveylens/internal/models"

func opts(values ...string) []models.Option {
	out := make([]models.Option, len(values))
	for i, v := range values {
		out[i] = models.Option{Value: v, Label: v}
	}
	return out
}

var defaultCategories = []models.FilterCategory{
	{
		Key:        Continent,
		QuestionID: GeographyQuestionID,
		Name:       "Continent",
		Special:    true,
		Options: opts(
			"Africa",
			"Asia",
			"Europe",
			"North America",
			"Oceania",
			"South America",
		),
	},
	{
		Key:        Experience,
		QuestionID: "ElR6d2",
		Name:       "Experience Level",
		Options: opts(
			"Less than 1 year",
			"1 to 2 years",
			"2 to 5 years",
			"5 to 10 years",
			"More than 10 years",
		),
	},
	{
		Key:         Purpose,
		QuestionID:  "pX4mQ1",
		Name:        "Primary Purpose",
		MultiSelect: true,
		Options: []models.Option{
			{Value: "Hobbyist/Personal projects (home automation, learning, experiments)", Label: "Hobbyist / personal"},
			{Value: "Professional/Work projects (client work, internal tools)", Label: "Professional / work"},
			{Value: "Education/Teaching", Label: "Education"},
			{Value: "Research & prototyping", Label: "Research"},
			{Value: "Open-source contributions", Label: "Open source"},
		},
	},
	{
		Key:        OrgSize,
		QuestionID: "Gq8Lz3",
		Name:       "Organization Size",
		Options: opts(
			"Just me (solo)",
			"2-10 employees",
			"11-50 employees",
			"51-200 employees",
			"201-1,000 employees",
			"1,000+ employees",
		),
	},
	{
		Key:        Industry,
		QuestionID: "Vb2Kt7",
		Name:       "Industry",
		Options: opts(
			"Technology/Software",
			"Manufacturing",
			"Energy & Utilities",
			"Healthcare",
			"Education",
			"Finance & Insurance",
			"Government/Public sector",
			"Retail & E-commerce",
			"Other",
		),
	},
	{
		Key:        Influence,
		QuestionID: "Hn5Rw9",
		Name:       "Decision Influence",
		Options: opts(
			"I make the final decision",
			"I strongly influence the decision",
			"I provide input",
			"I don't have any influence",
		),
	},
	{
		Key:        Programming,
		QuestionID: "Cz3Yp6",
		Name:       "Programming Comfort",
		Options: opts(
			"Not at all comfortable",
			"Somewhat comfortable",
			"Comfortable",
			"Very comfortable",
			"Expert",
		),
	},
	{
		Key:        Complexity,
		QuestionID: "Mf7Dq4",
		Name:       "Flow Complexity",
		Options: opts(
			"Simple (fewer than 10 flows)",
			"Moderate (10-50 flows)",
			"Complex (50-200 flows)",
			"Very complex (200+ flows)",
		),
	},
	{
		Key:        Production,
		QuestionID: "Tj1Ns8",
		Name:       "Production Use",
		Options: opts(
			"Yes, in production",
			"Not yet, but planned",
			"No, experiments only",
			"Don't know yet",
		),
	},
	{
		Key:        Instances,
		QuestionID: "Wk6Be2",
		Name:       "Instances Run",
		Options: opts(
			"1",
			"2-5",
			"6-20",
			"21-100",
			"More than 100",
		),
	},
	{
		Key:         UseCases,
		QuestionID:  "Rd9Fu5",
		Name:        "Use Cases",
		MultiSelect: true,
		Options: opts(
			"Home automation",
			"IoT data collection",
			"Industrial automation (PLC, SCADA)",
			"API integration & orchestration",
			"Data processing/ETL",
			"Dashboards & visualization",
			"Chatbots & notifications",
			"AI/LLM workflows",
		),
	},
	{
		Key:         Environment,
		QuestionID:  "Ys4Ha3",
		Name:        "Environment",
		MultiSelect: true,
		Options: opts(
			"Raspberry Pi",
			"Docker/Containers",
			"Kubernetes",
			"Cloud VM",
			"Bare-metal server",
			"Windows desktop",
			"Managed/hosted service",
		),
	},
	{
		Key:        EmailDomain,
		QuestionID: "Pe2Gc0",
		Name:       "Email Domain",
		Options: opts(
			"Business domain",
			"Personal email provider",
			"Education domain",
			"Government domain",
		),
	},
}

// ISO 3166-1 numeric codes per continent.
var continentCodes = map[string][]int{
	"Africa": {
		12, 24, 72, 108, 120, 132, 140, 148, 174, 178, 180, 204, 226, 231, 232,
		262, 266, 270, 288, 324, 384, 404, 426, 430, 434, 450, 454, 466, 478,
		480, 504, 508, 516, 562, 566, 624, 646, 678, 686, 690, 694, 706, 710,
		716, 728, 729, 748, 768, 788, 800, 818, 834, 854, 894,
	},
	"Asia": {
		4, 31, 48, 50, 51, 64, 96, 104, 116, 144, 156, 158, 268, 344, 356, 360,
		364, 368, 376, 392, 398, 400, 408, 410, 414, 417, 418, 422, 446, 458,
		462, 496, 512, 524, 586, 608, 626, 634, 682, 702, 704, 760, 762, 764,
		784, 792, 795, 860, 887,
	},
	"Europe": {
		8, 20, 40, 56, 70, 100, 112, 191, 196, 203, 208, 233, 246, 250, 276,
		292, 300, 336, 348, 352, 372, 380, 428, 438, 440, 442, 470, 492, 498,
		499, 528, 578, 616, 620, 642, 643, 674, 688, 703, 705, 724, 752, 756,
		804, 807, 826,
	},
	"North America": {
		28, 44, 52, 84, 124, 188, 192, 212, 214, 222, 308, 320, 332, 340, 388,
		484, 558, 591, 630, 659, 662, 670, 780, 840,
	},
	"Oceania": {
		36, 90, 184, 242, 258, 296, 316, 520, 540, 548, 554, 570, 583, 584,
		585, 598, 772, 776, 798, 882,
	},
	"South America": {
		32, 68, 76, 152, 170, 218, 238, 254, 328, 600, 604, 740, 858, 862,
	},
}
