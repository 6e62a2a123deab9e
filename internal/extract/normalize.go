package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const yearPattern = `(?:19|20)\d{2}`

var (
	reHyphenBreak   = regexp.MustCompile(`(\p{L})-[ \t]*\n[ \t]*(\p{L})`)
	reYearBreak     = regexp.MustCompile(`\b(` + yearPattern + `)[ \t]*([-–]?)[ \t]*\n[ \t\n]*([-–]?)[ \t]*(` + yearPattern + `)\b`)
	reCapitalBreak  = regexp.MustCompile(`\b([A-Z][a-z]+)[ \t]*\n[ \t]*([A-Z][a-z]+)\b`)
	reBullet        = regexp.MustCompile(`(?m)^[ \t]*[•●○◦▪■□‣⁃∙➢►▶]+[ \t]*`)
	reBlankRun      = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
	reYearRange     = regexp.MustCompile(`\b(` + yearPattern + `)[ \t]*([-–])[ \t]*(` + yearPattern + `)\b`)
	lineEndReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize repairs layout damage left by text extraction. Rules run in a fixed
// order and each runs to a fixed point, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = lineEndReplacer.Replace(text)
	text = rejoinHyphenBreaks(text)
	text = rejoinYearBreaks(text)
	text = rejoinCapitalBreaks(text)
	text = separateHeaders(text)
	text = normalizeBullets(text)
	text = collapseBlankLines(text)
	text = spaceYearRanges(text)
	return strings.TrimSpace(text)
}

func rejoinHyphenBreaks(text string) string {
	return untilStable(text, func(s string) string {
		return reHyphenBreak.ReplaceAllString(s, "$1$2")
	})
}

// rejoinYearBreaks turns "2020\n2022" into "2020-2022". A dash already present
// on either side of the break is kept.
func rejoinYearBreaks(text string) string {
	return untilStable(text, func(s string) string {
		return reYearBreak.ReplaceAllStringFunc(s, func(m string) string {
			parts := reYearBreak.FindStringSubmatch(m)
			sep := "-"
			if parts[2] != "" {
				sep = parts[2]
			} else if parts[3] != "" {
				sep = parts[3]
			}
			return parts[1] + sep + parts[4]
		})
	})
}

func rejoinCapitalBreaks(text string) string {
	return untilStable(text, func(s string) string {
		return reCapitalBreak.ReplaceAllString(s, "$1 $2")
	})
}

// separateHeaders inserts a blank line before an all-uppercase line unless one
// is already there.
func separateHeaders(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i > 0 && isHeaderLine(line) && strings.TrimSpace(lines[i-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isHeaderLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	upperRun, maxRun := 0, 0
	for i, r := range trimmed {
		switch {
		case unicode.IsLetter(r):
			if !unicode.IsUpper(r) {
				return false
			}
			upperRun++
			if upperRun > maxRun {
				maxRun = upperRun
			}
			continue
		case i == 0:
			return false
		case r == ' ' || r == '\t' || unicode.IsDigit(r) || strings.ContainsRune("&/-:,.'()+", r):
		default:
			return false
		}
		upperRun = 0
	}
	return maxRun >= 2
}

func normalizeBullets(text string) string {
	return reBullet.ReplaceAllString(text, "• ")
}

func collapseBlankLines(text string) string {
	return reBlankRun.ReplaceAllString(text, "\n\n")
}

// spaceYearRanges writes every year range as "YYYY - YYYY". Matching resumes at
// the second year so chains like 2019-2020-2021 are spaced throughout.
func spaceYearRanges(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := reYearRange.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:loc[2]])
		b.WriteString(rest[loc[2]:loc[3]])
		b.WriteString(" ")
		b.WriteString(rest[loc[4]:loc[5]])
		b.WriteString(" ")
		rest = rest[loc[6]:]
	}
}

func untilStable(text string, step func(string) string) string {
	for {
		next := step(text)
		if next == text {
			return next
		}
		text = next
	}
}
