package duelist

import "strings"

// Tier is the classification bucket handed to the presentation layer.
type Tier string

const (
	TierOverdue Tier = "overdue"
	TierRed     Tier = "red"
	TierAmber   Tier = "amber"
	TierGreen   Tier = "green"
	TierNA      Tier = "na"
)

// Classify buckets an hours-remaining value. nil means the source gave us
// no numeric figure at all.
func Classify(hrs *float64) Tier {
	if hrs == nil {
		return TierNA
	}
	switch {
	case *hrs < 0:
		return TierOverdue
	case *hrs <= 25:
		return TierRed
	case *hrs <= 100:
		return TierAmber
	default:
		return TierGreen
	}
}

// ClassifyFromStatus is the fallback classifier for items where the export
// carries only the source system's due-status text.
func ClassifyFromStatus(status string) Tier {
	s := strings.ToUpper(strings.TrimSpace(status))
	if s == "" {
		return TierNA
	}
	switch {
	case strings.Contains(s, "PAST DUE"):
		return TierOverdue
	case strings.Contains(s, "COMING DUE"):
		return TierAmber
	case strings.Contains(s, "WITHIN TOLERANCE"), strings.Contains(s, "10+"):
		return TierGreen
	default:
		return TierNA
	}
}

// ClassifyDays buckets a days-remaining value, used for components that
// track calendar limits instead of flight hours.
func ClassifyDays(days *float64) Tier {
	if days == nil {
		return TierNA
	}
	switch {
	case *days < 0:
		return TierOverdue
	case *days <= 7:
		return TierRed
	case *days <= 30:
		return TierAmber
	default:
		return TierGreen
	}
}
