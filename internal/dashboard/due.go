package dashboard

import (
	"fmt"
	"math"
	"time"

	"solarflow/internal/model"
)

const day = 24 * time.Hour

// DescribeDue reports whether a due date has passed and how urgent it is.
// Urgent means due within a day, soon within three.
func DescribeDue(due *time.Time, now time.Time) model.DueStatus {
	if due == nil {
		return model.DueStatus{Urgency: model.UrgencyNone, Text: "No due date"}
	}
	if now.After(*due) {
		return model.DueStatus{
			Overdue: true,
			Urgency: model.UrgencyOverdue,
			Text:    "Overdue by " + Distance(now.Sub(*due)),
		}
	}

	left := due.Sub(now)
	days := int(math.Ceil(float64(left) / float64(day)))
	urgency := model.UrgencyNormal
	switch {
	case days <= 1:
		urgency = model.UrgencyUrgent
	case days <= 3:
		urgency = model.UrgencySoon
	}
	return model.DueStatus{Urgency: urgency, Text: "Due in " + Distance(left)}
}

// Distance renders a duration in words, e.g. "about 3 hours" or "5 days".
func Distance(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	minutes := int(math.Round(d.Minutes()))
	switch {
	case d < 30*time.Second:
		return "less than a minute"
	case minutes < 45:
		return plural(minutes, "minute")
	case minutes < 90:
		return "about 1 hour"
	case d < day:
		return "about " + plural(int(math.Round(d.Hours())), "hour")
	case d < 42*time.Hour:
		return "1 day"
	case d < 30*day:
		return plural(int(math.Round(d.Hours()/24)), "day")
	case d < 45*day:
		return "about 1 month"
	case d < 365*day:
		return plural(int(math.Round(d.Hours()/24/30)), "month")
	default:
		return "about " + plural(int(math.Round(d.Hours()/24/365)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
