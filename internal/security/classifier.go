package security

import (
	"fmt"
	"strings"

	"github.com/intellecta/intellecta/internal/models"
)

const maxMatchesPerFinding = 5

// Classifier scans text against an immutable rule set and assigns the
// highest security level with any matching signal. Safe for concurrent use.
type Classifier struct {
	rules *RuleSet
}

// NewClassifier returns a classifier over the given rule set. The rule set
// must not be mutated after this call.
func NewClassifier(rules *RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Classifier{rules: rules}
}

// Classify scans content and returns the detected level, a confidence score
// in [0,100], and the individual findings. Classification never fails; text
// with no signals is PUBLIC with confidence 0.
func (c *Classifier) Classify(content string) (models.SecurityLevel, float64, []models.SecurityFinding) {
	content = strings.ToValidUTF8(content, "")
	lower := strings.ToLower(content)

	var findings []models.SecurityFinding
	detected := models.LevelPublic

	for _, rule := range c.rules.Patterns {
		for _, re := range rule.Patterns {
			matches := re.FindAllString(content, -1)
			if len(matches) == 0 {
				continue
			}
			matches = dedupe(matches, maxMatchesPerFinding)
			findings = append(findings, models.SecurityFinding{
				Type:    rule.Type,
				Pattern: re.String(),
				Matches: matches,
				Level:   rule.Level,
			})
			if rule.Level.Value() > detected.Value() {
				detected = rule.Level
			}
		}
	}

	for _, level := range models.LevelsDescending {
		for _, kw := range c.rules.Keywords[level] {
			if !strings.Contains(lower, kw) {
				continue
			}
			findings = append(findings, models.SecurityFinding{
				Type:  "keyword",
				Match: kw,
				Level: level,
			})
			if level.Value() > detected.Value() {
				detected = level
			}
		}
	}

	return detected, confidence(findings), findings
}

// AutoDetect classifies content and wraps the result with a recommendation
// for the caller.
func (c *Classifier) AutoDetect(content string) *models.AutoDetectResponse {
	level, conf, findings := c.Classify(content)
	if findings == nil {
		findings = []models.SecurityFinding{}
	}
	return &models.AutoDetectResponse{
		DetectedLevel:  level,
		LevelValue:     level.Value(),
		Confidence:     conf,
		FindingsCount:  len(findings),
		Findings:       findings,
		Recommendation: recommendation(level, len(findings)),
	}
}

// CheckQuery scans a query string against the keyword lists only and returns
// the sensitivity level the query implies plus the first keyword that
// triggered it. Queries with no keyword hits are PUBLIC.
func (c *Classifier) CheckQuery(query string) (models.SecurityLevel, string) {
	lower := strings.ToLower(strings.ToValidUTF8(query, ""))
	for _, level := range models.LevelsDescending {
		for _, kw := range c.rules.Keywords[level] {
			if strings.Contains(lower, kw) {
				return level, kw
			}
		}
	}
	return models.LevelPublic, ""
}

// DualCheck evaluates both the query sensitivity and the highest level among
// retrieved content, reporting the effective level against the caller's
// clearance. Used to annotate query responses.
func (c *Classifier) DualCheck(query string, contentLevel models.SecurityLevel, clearance models.SecurityLevel) *models.SecurityInfo {
	queryLevel, keyword := c.CheckQuery(query)

	effective := queryLevel
	if contentLevel.Value() > effective.Value() {
		effective = contentLevel
	}

	info := &models.SecurityInfo{
		Level:          effective,
		LevelValue:     effective.Value(),
		MatchedKeyword: keyword,
		AccessAllowed:  clearance.Allows(effective),
	}
	if !info.AccessAllowed {
		info.Warning = fmt.Sprintf("query touches %s content but clearance is %s", effective, clearance)
	} else if queryLevel.Value() > models.LevelPublic.Value() {
		info.Warning = fmt.Sprintf("query contains %s-sensitive terms", queryLevel)
	}
	return info
}

// confidence maps findings to [0,100]. Zero findings means no evidence at
// all, which is distinct from confidently PUBLIC, so it scores 0. Otherwise
// the score starts at 50 and grows with the level-weighted match count.
func confidence(findings []models.SecurityFinding) float64 {
	if len(findings) == 0 {
		return 0
	}
	weighted := 0
	for _, f := range findings {
		n := len(f.Matches)
		if n == 0 {
			n = 1
		}
		weighted += f.Level.Value() * n
	}
	maxPossible := len(findings) * models.LevelTopSecret.Value() * maxMatchesPerFinding
	score := 50 + 50*float64(weighted)/float64(maxPossible)
	if score > 100 {
		score = 100
	}
	return score
}

func recommendation(level models.SecurityLevel, count int) string {
	if count == 0 {
		return "No sensitive content detected; defaulting to PUBLIC."
	}
	switch level {
	case models.LevelTopSecret:
		return "Critical signals found. Restrict access to TOP_SECRET clearance and review manually."
	case models.LevelRestricted:
		return "Personal or credential data found. Restrict access and consider redaction."
	case models.LevelConfidential:
		return "Business-sensitive content found. Limit to CONFIDENTIAL clearance."
	case models.LevelInternal:
		return "Internal operational content found. Keep within the organization."
	default:
		return "Low-sensitivity signals only; PUBLIC classification is acceptable."
	}
}

func dedupe(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
