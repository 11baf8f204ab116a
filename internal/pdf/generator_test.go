package pdf

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"cvforge/internal/resume"
)

func minimalRecord() *resume.Record {
	return &resume.Record{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "+49 151 1234567",
		Summary:   "Backend engineer focused on document pipelines.",
	}
}

func fullRecord() *resume.Record {
	rec := minimalRecord()
	rec.Links = []resume.Link{
		{Type: resume.LinkGit, URL: "https://github.com/janedoe"},
	}
	rec.Experience = []resume.Experience{
		{
			Company: "Acme GmbH", Position: "Senior Engineer",
			StartMonth: "March", StartYear: "2019",
			EndMonth: "December", EndYear: "2021",
			Description: "Built the billing platform.",
			Projects: []resume.Project{
				{Name: "Invoicing", Detail: "Event-driven invoice generation."},
				{Name: "Reporting"},
			},
		},
	}
	rec.Education = []resume.Education{
		{Institution: "TU Berlin", Degree: "M.Sc.", Field: "Computer Science", StartYear: "2015", EndYear: "2018"},
	}
	rec.Languages = []resume.Language{
		{Name: "English", Level: resume.LevelNative},
		{Name: "German", Level: resume.LevelConversational},
	}
	rec.Skills = []string{"Go", "PostgreSQL", "Kubernetes"}
	rec.Certificates = []resume.Certificate{
		{Name: "CKA", Issuer: "CNCF", Year: "2023"},
	}
	return rec
}

// renderPlain 关闭压缩渲染，便于直接在内容流里查找文本。
func renderPlain(t *testing.T, rec *resume.Record) []byte {
	t.Helper()
	g := &Generator{disableCompression: true}
	out, err := g.Render(rec)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

// containsText 在未压缩的内容流中查找文本。
// PDF 字符串里的括号与反斜线是转义过的，先按同样规则转义再搜索。
func containsText(buf []byte, s string) bool {
	escaped := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
	return bytes.Contains(buf, []byte(escaped))
}

func TestRenderMagicBytes(t *testing.T) {
	out := renderPlain(t, minimalRecord())
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with PDF magic bytes: %q", out[:8])
	}
}

func TestRenderMinimalRecord(t *testing.T) {
	out := renderPlain(t, minimalRecord())

	for _, want := range []string{"Jane Doe", "jane@example.com | +49 151 1234567", "PROFESSIONAL SUMMARY"} {
		if !containsText(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	for _, absent := range []string{"WORK EXPERIENCE", "EDUCATION", "LANGUAGES", "SKILLS", "CERTIFICATES"} {
		if containsText(out, absent) {
			t.Errorf("empty section title %q must not be rendered", absent)
		}
	}
}

func TestRenderNickname(t *testing.T) {
	rec := minimalRecord()
	rec.Nickname = "JD"
	out := renderPlain(t, rec)
	if !containsText(out, "Jane Doe (JD)") {
		t.Fatal("expected nickname in parentheses after the name")
	}

	out = renderPlain(t, minimalRecord())
	if containsText(out, "Jane Doe (") {
		t.Fatal("name line must not contain parentheses without a nickname")
	}
}

func TestRenderSectionOmission(t *testing.T) {
	rec := fullRecord()
	rec.Experience = nil
	rec.Languages = nil
	out := renderPlain(t, rec)

	if containsText(out, "WORK EXPERIENCE") {
		t.Error("experience title rendered for empty experience")
	}
	if containsText(out, "LANGUAGES") {
		t.Error("languages title rendered for empty languages")
	}
	if !containsText(out, "EDUCATION") || !containsText(out, "SKILLS") {
		t.Error("populated sections must still be rendered")
	}
}

func TestRenderOngoingDuration(t *testing.T) {
	rec := minimalRecord()
	rec.Experience = []resume.Experience{
		{
			Company: "Acme GmbH", Position: "Engineer",
			StartMonth: "June", StartYear: "2022",
			EndMonth: "December", EndYear: "2024",
			Current:     true,
			Description: "Platform work.",
		},
	}
	out := renderPlain(t, rec)

	if !containsText(out, "Present") {
		t.Error("ongoing entry must render Present")
	}
	if containsText(out, "December") || containsText(out, "2024") {
		t.Error("ongoing entry must not render the stray end date")
	}
}

func TestRenderClosedDuration(t *testing.T) {
	rec := minimalRecord()
	rec.Experience = []resume.Experience{
		{
			Company: "Acme GmbH", Position: "Engineer",
			StartMonth: "March", StartYear: "2019",
			EndMonth: "December", EndYear: "2021",
			Description: "Platform work.",
		},
	}
	out := renderPlain(t, rec)

	if !containsText(out, "December") || !containsText(out, "2021") {
		t.Error("closed entry must render the end month and year")
	}
	if containsText(out, "Present") {
		t.Error("closed entry must not render Present")
	}
}

func TestRenderLinkLabels(t *testing.T) {
	rec := minimalRecord()
	rec.Links = []resume.Link{
		{Type: resume.LinkGit, URL: "https://github.com/janedoe"},
		{Type: resume.LinkOther, URL: "https://example.com/writing", Label: "blog"},
		{Type: resume.LinkOther, URL: "https://example.com/misc", Label: "   "},
	}
	out := renderPlain(t, rec)

	if !containsText(out, "Git Repo: https://github.com/janedoe") {
		t.Error("git link must render with the Git Repo label")
	}
	if !containsText(out, "Blog: https://example.com/writing") {
		t.Error("custom label must render capitalized")
	}
	if containsText(out, "blog: https://example.com/writing") {
		t.Error("custom label must not render lowercase")
	}
	if !containsText(out, "Other: https://example.com/misc") {
		t.Error("blank custom label must fall back to Other")
	}
}

var yearGroupPattern = regexp.MustCompile(`\\\(20\d\d\\\)`)

func TestRenderCertificateYear(t *testing.T) {
	rec := minimalRecord()
	rec.Certificates = []resume.Certificate{{Name: "CKA", Issuer: "CNCF", Year: "2023"}}
	out := renderPlain(t, rec)
	if !containsText(out, "(2023)") {
		t.Error("certificate year must render in parentheses")
	}

	rec.Certificates = []resume.Certificate{{Name: "CKA", Issuer: "CNCF"}}
	out = renderPlain(t, rec)
	if yearGroupPattern.Match(out) {
		t.Error("certificate without year must not render a parenthesized year group")
	}
}

func photoDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		for y := 0; y < 60; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test photo: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRenderPhoto(t *testing.T) {
	rec := minimalRecord()
	rec.Photo = photoDataURI(t)
	out := renderPlain(t, rec)

	if !bytes.Contains(out, []byte("/XObject")) {
		t.Error("expected an image object in the document")
	}
	if !containsText(out, "Jane Doe") {
		t.Error("header text missing")
	}
}

func TestRenderPhotoResilience(t *testing.T) {
	for name, payload := range map[string]string{
		"not base64":    "data:image/png;base64,!!!not-base64!!!",
		"not an image":  "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello world")),
		"empty payload": "data:image/png;base64,",
	} {
		rec := minimalRecord()
		rec.Photo = payload
		out, err := NewGenerator().Render(rec)
		if err != nil {
			t.Errorf("%s: render failed: %v", name, err)
			continue
		}
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Errorf("%s: output is not a valid document", name)
		}
	}
}

var pdfStringPattern = regexp.MustCompile(`\((?:\\.|[^()\\])*\)`)

// renderedStrings 按出现顺序提取输出中的全部文本字面量。
// 字体字典等资源对象按 map 遍历顺序写出，两次渲染的原始字节
// 并不稳定；稳定的是内容流里的文本，时间戳除外。
func renderedStrings(buf []byte) []string {
	matches := pdfStringPattern.FindAll(buf, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if bytes.HasPrefix(m, []byte("(D:")) {
			continue
		}
		out = append(out, string(m))
	}
	return out
}

func TestRenderIdempotence(t *testing.T) {
	rec := fullRecord()
	first := renderedStrings(renderPlain(t, rec))
	second := renderedStrings(renderPlain(t, rec))

	if len(first) == 0 {
		t.Fatal("no text literals found in rendered output")
	}
	if len(first) != len(second) {
		t.Fatalf("renders differ in literal count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("literal %d differs between renders: %q vs %q", i, first[i], second[i])
		}
	}
}

// pageStreams 按页序切出各页的内容流。无图片的文档里，
// stream/endstream 块与页面一一对应。
func pageStreams(t *testing.T, buf []byte) [][]byte {
	t.Helper()
	var streams [][]byte
	rest := buf
	for {
		i := bytes.Index(rest, []byte("stream\n"))
		if i < 0 {
			break
		}
		rest = rest[i+len("stream\n"):]
		j := bytes.Index(rest, []byte("endstream"))
		if j < 0 {
			t.Fatal("unterminated content stream")
		}
		streams = append(streams, rest[:j])
		rest = rest[j+len("endstream"):]
	}
	return streams
}

var textShowPattern = regexp.MustCompile(`\((?:\\.|[^()\\])*\)Tj`)

func TestRenderMultiPagePagination(t *testing.T) {
	rec := minimalRecord()
	long := strings.Repeat("Designed, built and operated document generation services. ", 8)
	for i := 0; i < 14; i++ {
		rec.Experience = append(rec.Experience, resume.Experience{
			Company: "Acme GmbH", Position: "Engineer",
			StartMonth: "March", StartYear: "2019",
			EndMonth: "December", EndYear: "2021",
			Description: long,
		})
	}

	g := &Generator{disableCompression: true}
	doc, err := g.build(rec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.PageCount() < 2 {
		t.Fatalf("expected multiple pages, got %d", doc.PageCount())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}

	streams := pageStreams(t, buf.Bytes())
	if len(streams) != doc.PageCount() {
		t.Fatalf("expected %d page streams, got %d", doc.PageCount(), len(streams))
	}

	// 章节标题或条目标题不得作为一页的最后一行：标题后面
	// 必须在同一页跟着正文。条目标题以右对齐的时间段收尾
	// （en dash 经 cp1252 转写为 0x96），所以它也在清单里。
	headings := map[string]bool{
		"(PROFESSIONAL SUMMARY)Tj":          true,
		"(WORK EXPERIENCE)Tj":               true,
		"(Acme GmbH)Tj":                     true,
		"(March 2019 \x96 December 2021)Tj": true,
		"(Engineer)Tj":                      true,
	}
	for i, stream := range streams {
		shows := textShowPattern.FindAll(stream, -1)
		if len(shows) == 0 {
			t.Errorf("page %d has no text", i+1)
			continue
		}
		if last := string(shows[len(shows)-1]); headings[last] {
			t.Errorf("page %d ends with heading %s", i+1, last)
		}
	}
}

func TestEnsureSpacePageBreak(t *testing.T) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()
	st := &renderState{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	// 剩余空间充足时不换页。
	doc.SetY(pageMargin)
	st.ensureSpace(minSectionSpace)
	if doc.PageNo() != 1 {
		t.Fatalf("unexpected page break, page %d", doc.PageNo())
	}

	// 不足 100pt 时开新页并把光标重置到上边距。
	doc.SetY(pageHeight - pageMargin - 40)
	st.ensureSpace(minSectionSpace)
	if doc.PageNo() != 2 {
		t.Fatalf("expected page break, page %d", doc.PageNo())
	}
	if y := doc.GetY(); y > pageMargin+1 {
		t.Fatalf("cursor not reset to top margin, y=%f", y)
	}
}
