package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"cvforge/internal/resume"
)

// Generator 将一份已校验的简历记录渲染成单份 PDF。
// 每次 Render 独立持有引擎实例与输出缓冲，可安全并发调用。
type Generator struct {
	// 关闭内容流压缩，测试时用来直接检查渲染出的文本。
	disableCompression bool
}

// NewGenerator 构造渲染器。
func NewGenerator() *Generator {
	return &Generator{}
}

// Render 渲染整份简历并返回完整的 PDF 字节。
// 任一写入步骤失败都会使整次渲染失败，不返回部分结果。
func (g *Generator) Render(record *resume.Record) ([]byte, error) {
	doc, err := g.build(record)
	if err != nil {
		return nil, fmt.Errorf("render resume: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render resume: %w", err)
	}
	return buf.Bytes(), nil
}

// build 按固定顺序执行各区块的渲染并返回未输出的文档。
func (g *Generator) build(record *resume.Record) (*fpdf.Fpdf, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCompression(!g.disableCompression)
	doc.SetTitle(record.FirstName+" "+record.LastName+" - Resume", true)
	doc.AddPage()
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("init pdf engine: %w", err)
	}

	r := &renderState{
		doc: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}

	r.header(record)
	r.summary(record)
	r.experience(record)
	r.education(record)
	r.languages(record)
	r.skills(record)
	r.certificates(record)

	if err := doc.Error(); err != nil {
		return nil, err
	}
	return doc, nil
}

// renderState 是单次渲染的可变状态：fpdf 文档自身跟踪当前页
// 与纵向写入位置，即规格中的光标。
type renderState struct {
	doc *fpdf.Fpdf
	tr  func(string) string
}

// startSection 负责章节之间的间距、孤行保护与标题渲染。
// 空章节的渲染器直接返回，不会调用它。
func (r *renderState) startSection(title string) {
	r.doc.Ln(sectionGap)
	r.ensureSpace(minSectionSpace)
	r.sectionTitle(title)
}

// sectionTitle 渲染章节标题和通栏分隔线。不做分页检查，
// 调用方必须先通过 ensureSpace 保证标题与正文不被拆开。
func (r *renderState) sectionTitle(title string) {
	r.doc.SetFont(fontFamily, "B", sectionFontSize)
	r.setColor(headingColor)
	r.doc.CellFormat(0, sectionLineHeight, r.tr(title), "", 1, "L", false, 0, "")

	y := r.doc.GetY() + 2
	r.doc.SetDrawColor(dividerColor[0], dividerColor[1], dividerColor[2])
	r.doc.SetLineWidth(0.7)
	r.doc.Line(pageMargin, y, pageWidth-pageMargin, y)
	r.doc.SetY(y + 10)
	r.setColor(textColor)
}

func (r *renderState) header(record *resume.Record) {
	textWidth := contentWidth
	photoBottom := 0.0
	if record.Photo != "" {
		if bottom, ok := r.tryEmbedPhoto(record.Photo); ok {
			photoBottom = bottom
			textWidth = contentWidth - photoBoxSize - photoGap
		}
	}

	name := record.FirstName + " " + record.LastName
	if record.Nickname != "" {
		name += " (" + record.Nickname + ")"
	}
	r.doc.SetFont(fontFamily, "B", nameFontSize)
	r.setColor(headingColor)
	r.doc.MultiCell(textWidth, nameLineHeight, r.tr(name), "", "L", false)

	r.doc.SetFont(fontFamily, "", bodyFontSize)
	r.setColor(secondaryColor)
	r.doc.CellFormat(textWidth, linkLineHeight+2, r.tr(record.Email+" | "+record.Phone), "", 1, "L", false, 0, "")

	if len(record.Links) > 0 {
		r.setColor(linkColor)
		for _, link := range record.Links {
			line := linkLabel(link) + ": " + link.URL
			r.doc.CellFormat(textWidth, linkLineHeight, r.tr(line), "", 1, "L", false, 0, "")
		}
	}
	r.setColor(textColor)

	// Header 之后是通栏章节，光标必须越过照片底边。
	if photoBottom > 0 && r.doc.GetY() < photoBottom {
		r.doc.SetY(photoBottom)
	}
}

// tryEmbedPhoto 尽力把照片放进右上角的 110x110 选框（等比缩放），
// 返回照片底边的 Y。任何解码或放置错误都被吞掉：简历绝不能
// 只因为照片问题而生成失败。
func (r *renderState) tryEmbedPhoto(dataURI string) (float64, bool) {
	raw, err := decodePhotoPayload(dataURI)
	if err != nil {
		return 0, false
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, false
	}

	// 统一转成 PNG 再交给引擎，jpeg/png/webp 三种来源走同一条路径。
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return 0, false
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return 0, false
	}
	scale := math.Min(photoBoxSize/float64(bounds.Dx()), photoBoxSize/float64(bounds.Dy()))
	w := float64(bounds.Dx()) * scale
	h := float64(bounds.Dy()) * scale

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	r.doc.RegisterImageOptionsReader("profile-photo", opts, &encoded)
	if r.doc.Err() {
		r.doc.ClearError()
		return 0, false
	}

	r.doc.ImageOptions("profile-photo", pageWidth-pageMargin-w, pageMargin, w, h, false, opts, 0, "")
	if r.doc.Err() {
		r.doc.ClearError()
		return 0, false
	}

	return pageMargin + h, true
}

func decodePhotoPayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "base64,"); i >= 0 {
		s = s[i+len("base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}

func (r *renderState) summary(record *resume.Record) {
	if strings.TrimSpace(record.Summary) == "" {
		return
	}
	r.startSection("PROFESSIONAL SUMMARY")

	r.doc.SetFont(fontFamily, "", bodyFontSize)
	// 首行缩进：Write 从当前 X 开始流式排版，换行后回到左边距。
	r.doc.SetX(pageMargin + paragraphIndent)
	r.doc.Write(bodyLineHeight, r.tr(record.Summary))
	r.doc.Ln(bodyLineHeight)
}

func (r *renderState) experience(record *resume.Record) {
	if len(record.Experience) == 0 {
		return
	}
	r.startSection("WORK EXPERIENCE")

	for i, entry := range record.Experience {
		if i > 0 {
			r.doc.Ln(entryGap)
		}
		r.ensureSpace(minSectionSpace)

		r.entryHeading(entry.Company, experienceDuration(entry))

		r.doc.SetFont(fontFamily, "I", bodyFontSize+0.5)
		r.doc.MultiCell(0, linkLineHeight, r.tr(entry.Position), "", "L", false)

		r.doc.SetFont(fontFamily, "", bodyFontSize)
		r.doc.MultiCell(0, bodyLineHeight, r.tr(entry.Description), "", "L", false)

		if len(entry.Projects) > 0 {
			r.projects(entry.Projects)
		}
	}
}

func (r *renderState) projects(list []resume.Project) {
	r.doc.Ln(3)
	r.doc.SetFont(fontFamily, "B", bodyFontSize)
	r.doc.CellFormat(0, bodyLineHeight, "Projects:", "", 1, "L", false, 0, "")

	for _, p := range list {
		r.doc.SetFont(fontFamily, "B", bodyFontSize)
		r.doc.SetX(pageMargin + projectIndent)
		r.doc.MultiCell(contentWidth-projectIndent, bodyLineHeight, r.tr("• "+p.Name), "", "L", false)

		if detail := strings.TrimSpace(p.Detail); detail != "" {
			r.doc.SetFont(fontFamily, "", bodyFontSize)
			r.doc.SetX(pageMargin + detailIndent)
			r.doc.MultiCell(contentWidth-detailIndent, bodyLineHeight-1, r.tr(detail), "", "L", false)
		}
	}
}

func (r *renderState) education(record *resume.Record) {
	if len(record.Education) == 0 {
		return
	}
	r.startSection("EDUCATION")

	for i, entry := range record.Education {
		if i > 0 {
			r.doc.Ln(entryGap)
		}
		r.ensureSpace(minSectionSpace)

		r.entryHeading(entry.Institution, educationDuration(entry))

		r.doc.SetFont(fontFamily, "I", bodyFontSize+0.5)
		r.doc.MultiCell(0, linkLineHeight, r.tr(degreeLine(entry)), "", "L", false)

		if desc := strings.TrimSpace(entry.Description); desc != "" {
			r.doc.SetFont(fontFamily, "", bodyFontSize)
			r.doc.MultiCell(0, bodyLineHeight, r.tr(desc), "", "L", false)
		}
	}
}

func (r *renderState) languages(record *resume.Record) {
	if len(record.Languages) == 0 {
		return
	}
	r.startSection("LANGUAGES")

	lines := make([]string, 0, len(record.Languages))
	for _, l := range record.Languages {
		lines = append(lines, languageLine(l))
	}

	// 所有语言合成一个流式文本块，整体折行。
	r.doc.SetFont(fontFamily, "", bodyFontSize)
	r.doc.Write(bodyLineHeight, r.tr(strings.Join(lines, bulletSeparator)))
	r.doc.Ln(bodyLineHeight)
}

func (r *renderState) skills(record *resume.Record) {
	if len(record.Skills) == 0 {
		return
	}
	r.startSection("SKILLS")

	r.doc.SetFont(fontFamily, "", bodyFontSize)
	r.doc.Write(bodyLineHeight, r.tr(strings.Join(record.Skills, bulletSeparator)))
	r.doc.Ln(bodyLineHeight)
}

func (r *renderState) certificates(record *resume.Record) {
	if len(record.Certificates) == 0 {
		return
	}
	r.startSection("CERTIFICATES")

	r.doc.SetFont(fontFamily, "", bodyFontSize)
	for i, cert := range record.Certificates {
		if i > 0 {
			r.doc.Ln(certGap)
		}
		r.doc.MultiCell(0, bodyLineHeight, r.tr(certificateLine(cert)), "", "L", false)
	}
}

// entryHeading 在同一基线上渲染左对齐的标题（加粗）与右对齐的
// 时间段：两次独立放置，左列为时间段预留宽度。
func (r *renderState) entryHeading(title, duration string) {
	y := r.doc.GetY()

	r.doc.SetFont(fontFamily, "B", entryFontSize)
	r.setColor(headingColor)
	r.doc.MultiCell(contentWidth-durationReserve, entryLineHeight, r.tr(title), "", "L", false)
	after := r.doc.GetY()

	r.doc.SetFont(fontFamily, "", bodyFontSize)
	r.setColor(secondaryColor)
	r.doc.SetXY(pageMargin, y)
	r.doc.CellFormat(contentWidth, entryLineHeight, r.tr(duration), "", 0, "R", false, 0, "")

	r.setColor(textColor)
	if bottom := y + entryLineHeight; after > bottom {
		r.doc.SetY(after)
	} else {
		r.doc.SetY(bottom)
	}
}

func (r *renderState) setColor(rgb [3]int) {
	r.doc.SetTextColor(rgb[0], rgb[1], rgb[2])
}
