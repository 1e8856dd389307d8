// Package security implements content classification and clearance-based
// access filtering over a five-tier level model.
package security

import (
	"regexp"

	"github.com/intellecta/intellecta/internal/models"
)

// PatternRule is a compiled regex signal group pre-tagged with a level.
type PatternRule struct {
	Type        string
	Description string
	Level       models.SecurityLevel
	Patterns    []*regexp.Regexp
}

// RuleSet is the immutable signal table injected into a Classifier.
// Built once at startup and never mutated afterwards.
type RuleSet struct {
	Patterns []PatternRule
	Keywords map[models.SecurityLevel][]string
}

func mustPatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}

// DefaultRuleSet returns the built-in signal table for energy-sector
// document analysis.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Patterns: []PatternRule{
			{
				Type:        "critical_infrastructure",
				Description: "Critical infrastructure and classified content",
				Level:       models.LevelTopSecret,
				Patterns: mustPatterns(
					`\b(nuclear|reactor|enrichment|uranium|plutonium)\b`,
					`\b(scada|ics|plc|dcs|hmi)\s*(system|control|network)`,
					`\b(grid\s*attack|cyber\s*attack|vulnerability\s*exploit)`,
					`\b(classified|top\s*secret|ts/sci)\b`,
				),
			},
			{
				Type:        "national_security",
				Description: "National security related content",
				Level:       models.LevelTopSecret,
				Patterns: mustPatterns(
					`\b(defense|military|weapon|ammunition)\s*(system|facility|program)`,
					`\b(intelligence|espionage|covert|clandestine)\b`,
				),
			},
			{
				Type:        "pii_ssn",
				Description: "Social Security Numbers",
				Level:       models.LevelRestricted,
				Patterns: mustPatterns(
					`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`,
				),
			},
			{
				Type:        "pii_financial",
				Description: "Financial account information",
				Level:       models.LevelRestricted,
				Patterns: mustPatterns(
					`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
					`\b(bank\s*account|routing\s*number|iban|swift)\s*[:=]?\s*\d+`,
				),
			},
			{
				Type:        "credentials",
				Description: "Credentials and access keys",
				Level:       models.LevelRestricted,
				Patterns: mustPatterns(
					`\b(password|passwd|pwd|secret|api[_\s]?key|token)\s*[:=]\s*\S+`,
					`\b(private\s*key|ssh\s*key|rsa\s*key)`,
				),
			},
			{
				Type:        "medical",
				Description: "Medical and health records",
				Level:       models.LevelRestricted,
				Patterns: mustPatterns(
					`\b(patient|medical\s*record|diagnosis|prescription|hipaa)\b`,
					`\b(health\s*insurance|medical\s*history)\b`,
				),
			},
			{
				Type:        "salary_compensation",
				Description: "Salary and compensation data",
				Level:       models.LevelConfidential,
				Patterns: mustPatterns(
					`\b(salary|compensation|wage|bonus|stock\s*option)\s*[:=]?\s*\$?\d+`,
					`\b(annual\s*income|pay\s*grade|hourly\s*rate)\b`,
				),
			},
			{
				Type:        "proprietary",
				Description: "Proprietary business information",
				Level:       models.LevelConfidential,
				Patterns: mustPatterns(
					`\b(proprietary|trade\s*secret|confidential|nda)\b`,
					`\b(internal\s*only|do\s*not\s*distribute)\b`,
				),
			},
			{
				Type:        "financial_reports",
				Description: "Financial reports and projections",
				Level:       models.LevelConfidential,
				Patterns: mustPatterns(
					`\b(revenue|profit|loss|earnings|quarterly\s*report)\s*[:=]?\s*\$?\d+`,
					`\b(forecast|projection|budget)\s*[:=]?\s*\$?\d+`,
				),
			},
			{
				Type:        "energy_sensitive",
				Description: "Sensitive energy infrastructure details",
				Level:       models.LevelConfidential,
				Patterns: mustPatterns(
					`\b(power\s*plant|generation\s*capacity|grid\s*topology)\s*(data|info|detail)`,
					`\b(substation|transformer|transmission\s*line)\s*(location|coordinate)`,
				),
			},
			{
				Type:        "employee_info",
				Description: "Employee and internal communications",
				Level:       models.LevelInternal,
				Patterns: mustPatterns(
					`\b(employee\s*id|staff\s*number|personnel)\s*[:=]?\s*\w+`,
					`\b(internal\s*memo|internal\s*communication)\b`,
				),
			},
			{
				Type:        "operational",
				Description: "Operational procedures",
				Level:       models.LevelInternal,
				Patterns: mustPatterns(
					`\b(maintenance\s*schedule|outage\s*plan|operational\s*procedure)\b`,
					`\b(internal\s*process|workflow|sop)\b`,
				),
			},
		},
		Keywords: map[models.SecurityLevel][]string{
			models.LevelTopSecret: {
				"nuclear", "reactor", "scada", "ics", "classified", "top secret",
				"cyber attack", "vulnerability", "exploit", "defense system",
			},
			models.LevelRestricted: {
				"ssn", "social security", "credit card", "bank account", "password",
				"api key", "private key", "patient", "medical record", "hipaa",
			},
			models.LevelConfidential: {
				"salary", "compensation", "bonus", "revenue", "profit", "earnings",
				"proprietary", "trade secret", "nda", "grid topology", "substation location",
			},
			models.LevelInternal: {
				"employee id", "internal memo", "maintenance schedule", "outage plan",
			},
		},
	}
}
