package pdf

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"cvforge/internal/resume"
)

// linkLabel 返回链接的显示名称。
// 固定类型映射优先；other 类型使用首字母大写的自定义标签，缺省为 "Other"。
func linkLabel(l resume.Link) string {
	switch l.Type {
	case resume.LinkGit:
		return "Git Repo"
	case resume.LinkLinkedIn:
		return "LinkedIn"
	case resume.LinkPortfolio:
		return "Portfolio"
	}
	if label := strings.TrimSpace(l.Label); label != "" {
		return capitalizeFirst(label)
	}
	return "Other"
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// experienceDuration 组合经历的起止时间。
// Current 优先于残留的结束日期（上游正常情况下不会同时出现）。
func experienceDuration(e resume.Experience) string {
	start := e.StartMonth + " " + e.StartYear
	if e.Current {
		return start + " – Present"
	}
	return start + " – " + e.EndMonth + " " + e.EndYear
}

// educationDuration 与 experienceDuration 相同，但只精确到年份。
func educationDuration(e resume.Education) string {
	if e.Current {
		return e.StartYear + " – Present"
	}
	return e.StartYear + " – " + e.EndYear
}

func degreeLine(e resume.Education) string {
	if field := strings.TrimSpace(e.Field); field != "" {
		return e.Degree + " — " + field
	}
	return e.Degree
}

func languageLine(l resume.Language) string {
	return l.Name + " — " + capitalizeFirst(string(l.Level))
}

func certificateLine(c resume.Certificate) string {
	if year := strings.TrimSpace(c.Year); year != "" {
		return c.Name + " — " + c.Issuer + " (" + year + ")"
	}
	return c.Name + " — " + c.Issuer
}
