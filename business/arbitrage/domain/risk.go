package domain

// RiskLevel is the coarse classification returned by the risk scorer.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskVerdict is advisory only: it is displayed alongside a pending
// decision but never gates resolution.
type RiskVerdict struct {
	Level  RiskLevel
	Score  int // 0-100
	Reason string
}

// Valid reports whether the verdict came back well-formed.
func (v RiskVerdict) Valid() bool {
	switch v.Level {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return false
	}
	return v.Score >= 0 && v.Score <= 100
}
