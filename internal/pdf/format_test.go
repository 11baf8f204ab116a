package pdf

import (
	"testing"

	"cvforge/internal/resume"
)

func TestLinkLabel(t *testing.T) {
	cases := []struct {
		name string
		link resume.Link
		want string
	}{
		{"git", resume.Link{Type: resume.LinkGit, URL: "https://github.com/jd"}, "Git Repo"},
		{"linkedin", resume.Link{Type: resume.LinkLinkedIn, URL: "https://linkedin.com/in/jd"}, "LinkedIn"},
		{"portfolio", resume.Link{Type: resume.LinkPortfolio, URL: "https://jd.dev"}, "Portfolio"},
		{"other with label", resume.Link{Type: resume.LinkOther, URL: "https://blog.jd.dev", Label: "blog"}, "Blog"},
		{"other label trimmed", resume.Link{Type: resume.LinkOther, URL: "https://blog.jd.dev", Label: "  blog  "}, "Blog"},
		{"other label already capitalized", resume.Link{Type: resume.LinkOther, URL: "https://x.dev", Label: "Speaking"}, "Speaking"},
		{"other without label", resume.Link{Type: resume.LinkOther, URL: "https://x.dev"}, "Other"},
		{"other blank label", resume.Link{Type: resume.LinkOther, URL: "https://x.dev", Label: "   "}, "Other"},
	}

	for _, tc := range cases {
		if got := linkLabel(tc.link); got != tc.want {
			t.Errorf("%s: linkLabel = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCapitalizeFirst(t *testing.T) {
	cases := map[string]string{
		"blog":   "Blog",
		"Blog":   "Blog",
		"études": "Études",
		"x":      "X",
		"":       "",
	}
	for in, want := range cases {
		if got := capitalizeFirst(in); got != want {
			t.Errorf("capitalizeFirst(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExperienceDuration(t *testing.T) {
	closed := resume.Experience{
		StartMonth: "March", StartYear: "2019",
		EndMonth: "December", EndYear: "2021",
	}
	if got, want := experienceDuration(closed), "March 2019 – December 2021"; got != want {
		t.Errorf("closed entry: got %q, want %q", got, want)
	}

	ongoing := resume.Experience{StartMonth: "June", StartYear: "2022", Current: true}
	if got, want := experienceDuration(ongoing), "June 2022 – Present"; got != want {
		t.Errorf("ongoing entry: got %q, want %q", got, want)
	}

	// Current 标志优先于残留的结束日期。
	conflicting := resume.Experience{
		StartMonth: "June", StartYear: "2022",
		EndMonth: "December", EndYear: "2023",
		Current: true,
	}
	if got, want := experienceDuration(conflicting), "June 2022 – Present"; got != want {
		t.Errorf("conflicting entry: got %q, want %q", got, want)
	}
}

func TestEducationDuration(t *testing.T) {
	closed := resume.Education{StartYear: "2015", EndYear: "2019"}
	if got, want := educationDuration(closed), "2015 – 2019"; got != want {
		t.Errorf("closed entry: got %q, want %q", got, want)
	}

	ongoing := resume.Education{StartYear: "2023", EndYear: "2027", Current: true}
	if got, want := educationDuration(ongoing), "2023 – Present"; got != want {
		t.Errorf("ongoing entry: got %q, want %q", got, want)
	}
}

func TestDegreeLine(t *testing.T) {
	withField := resume.Education{Degree: "B.Sc.", Field: "Computer Science"}
	if got, want := degreeLine(withField), "B.Sc. — Computer Science"; got != want {
		t.Errorf("with field: got %q, want %q", got, want)
	}

	blankField := resume.Education{Degree: "B.Sc.", Field: "  "}
	if got, want := degreeLine(blankField), "B.Sc."; got != want {
		t.Errorf("blank field: got %q, want %q", got, want)
	}
}

func TestLanguageLine(t *testing.T) {
	l := resume.Language{Name: "German", Level: resume.LevelFluent}
	if got, want := languageLine(l), "German — Fluent"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCertificateLine(t *testing.T) {
	withYear := resume.Certificate{Name: "CKA", Issuer: "CNCF", Year: "2023"}
	if got, want := certificateLine(withYear), "CKA — CNCF (2023)"; got != want {
		t.Errorf("with year: got %q, want %q", got, want)
	}

	noYear := resume.Certificate{Name: "CKA", Issuer: "CNCF"}
	if got, want := certificateLine(noYear), "CKA — CNCF"; got != want {
		t.Errorf("no year: got %q, want %q", got, want)
	}

	blankYear := resume.Certificate{Name: "CKA", Issuer: "CNCF", Year: " "}
	if got, want := certificateLine(blankYear), "CKA — CNCF"; got != want {
		t.Errorf("blank year: got %q, want %q", got, want)
	}
}
