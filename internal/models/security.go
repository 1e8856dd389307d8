package models

import "fmt"

// SecurityLevel is an ordinal document classification tier. The JSON form is
// the tier name; ordering is by Value (PUBLIC=0 .. TOP_SECRET=4).
type SecurityLevel string

const (
	LevelPublic       SecurityLevel = "PUBLIC"
	LevelInternal     SecurityLevel = "INTERNAL"
	LevelConfidential SecurityLevel = "CONFIDENTIAL"
	LevelRestricted   SecurityLevel = "RESTRICTED"
	LevelTopSecret    SecurityLevel = "TOP_SECRET"
)

var levelValues = map[SecurityLevel]int{
	LevelPublic:       0,
	LevelInternal:     1,
	LevelConfidential: 2,
	LevelRestricted:   3,
	LevelTopSecret:    4,
}

// LevelsDescending lists all tiers from most to least sensitive.
var LevelsDescending = []SecurityLevel{
	LevelTopSecret, LevelRestricted, LevelConfidential, LevelInternal, LevelPublic,
}

// Value returns the ordinal for the level. Unknown levels map to 0 (PUBLIC).
func (l SecurityLevel) Value() int {
	return levelValues[l]
}

// Allows reports whether a caller with clearance l may access content
// classified at other.
func (l SecurityLevel) Allows(other SecurityLevel) bool {
	return l.Value() >= other.Value()
}

// LevelFromValue returns the level for an ordinal, defaulting to PUBLIC.
func LevelFromValue(v int) SecurityLevel {
	for level, value := range levelValues {
		if value == v {
			return level
		}
	}
	return LevelPublic
}

// ParseSecurityLevel validates a level string.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	l := SecurityLevel(s)
	if _, ok := levelValues[l]; !ok {
		return LevelPublic, fmt.Errorf("unknown security level: %q", s)
	}
	return l, nil
}

// SecurityFinding is a single classification signal detected in content.
// Kind is "keyword" or "pattern".
type SecurityFinding struct {
	Type    string        `json:"type"`
	Match   string        `json:"match,omitempty"`
	Pattern string        `json:"pattern,omitempty"`
	Matches []string      `json:"matches,omitempty"`
	Level   SecurityLevel `json:"level"`
}

// SecurityInfo is the result of the dual (query + content) security check.
type SecurityInfo struct {
	Level          SecurityLevel `json:"level"`
	LevelValue     int           `json:"level_value"`
	Warning        string        `json:"warning,omitempty"`
	MatchedKeyword string        `json:"matched_keyword,omitempty"`
	AccessAllowed  bool          `json:"access_allowed"`
}

// AutoDetectResponse reports the detected classification for document content.
type AutoDetectResponse struct {
	DetectedLevel  SecurityLevel     `json:"detected_level"`
	LevelValue     int               `json:"level_value"`
	Confidence     float64           `json:"confidence"`
	FindingsCount  int               `json:"findings_count"`
	Findings       []SecurityFinding `json:"findings"`
	Recommendation string            `json:"recommendation"`
}
