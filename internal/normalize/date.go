package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateMatch is the transient result of relative-date parsing.
type DateMatch struct {
	Value           time.Time
	Confidence      float64
	MatchedKeywords []string
}

var daysAgoEN = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
var daysAgoAR = regexp.MustCompile(`(?:منذ|من|قبل)\s*(\d+)\s*(?:يوم|أيام|ايام)`)

// Weekday keywords per language. Arabic names appear with and without the
// definite article since users write both.
var weekdayKeywords = map[time.Weekday][]string{
	time.Sunday:    {"sunday", "الأحد", "الاحد", "أحد", "احد"},
	time.Monday:    {"monday", "الاثنين", "الإثنين", "اثنين"},
	time.Tuesday:   {"tuesday", "الثلاثاء", "ثلاثاء"},
	time.Wednesday: {"wednesday", "الأربعاء", "الاربعاء", "أربعاء", "اربعاء"},
	time.Thursday:  {"thursday", "الخميس", "خميس"},
	time.Friday:    {"friday", "الجمعة", "جمعة"},
	time.Saturday:  {"saturday", "السبت", "سبت"},
}

// ParseRelativeDate resolves a relative-date phrase against the current
// clock. Absent or unrecognized input yields the current instant, never an
// error: a transaction with no date phrase happened "now".
func ParseRelativeDate(text string) time.Time {
	return ParseRelativeDateAt(text, time.Now())
}

// ParseRelativeDateAt is ParseRelativeDate with an explicit clock.
func ParseRelativeDateAt(text string, now time.Time) time.Time {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return now
	}

	switch {
	case containsAny(lowered, "today", "اليوم", "النهاردة", "النهارده"):
		return startOfDay(now)
	case containsAny(lowered, "yesterday", "امس", "أمس", "امبارح", "إمبارح", "مبارح"):
		return startOfDay(now.AddDate(0, 0, -1))
	case containsAny(lowered, "last week", "الأسبوع الماضي", "الاسبوع الماضي", "الأسبوع اللي فات", "الاسبوع اللي فات"):
		return startOfDay(now.AddDate(0, 0, -7))
	case containsAny(lowered, "last month", "الشهر الماضي", "الشهر اللي فات"):
		return startOfDay(now.AddDate(0, -1, 0))
	}

	if m := daysAgoEN.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return startOfDay(now.AddDate(0, 0, -n))
		}
	}
	if m := daysAgoAR.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return startOfDay(now.AddDate(0, 0, -n))
		}
	}

	for weekday, names := range weekdayKeywords {
		if containsAny(lowered, names...) {
			return startOfDay(mostRecentWeekday(now, weekday))
		}
	}

	return now
}

// mostRecentWeekday walks backwards to the given weekday. A phrase naming
// today's weekday means today, never a future occurrence.
func mostRecentWeekday(now time.Time, target time.Weekday) time.Time {
	diff := (int(now.Weekday()) - int(target) + 7) % 7
	return now.AddDate(0, 0, -diff)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
