package pdf

// 页面几何与样式常量。单位全部为 pt（A4 = 595.28 x 841.89）。
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	pageMargin = 50.0

	contentWidth = pageWidth - 2*pageMargin

	// minSectionSpace 是分页策略的阈值：章节标题或条目开头前
	// 剩余空间不足该值时先换页，避免孤行。
	minSectionSpace = 100.0

	photoBoxSize = 110.0
	photoGap     = 15.0
)

const (
	fontFamily = "Helvetica"

	nameFontSize    = 22.0
	sectionFontSize = 13.0
	entryFontSize   = 11.5
	bodyFontSize    = 10.0

	nameLineHeight    = 26.0
	sectionLineHeight = 18.0
	entryLineHeight   = 15.0
	bodyLineHeight    = 13.0
	linkLineHeight    = 14.0

	sectionGap = 16.0
	entryGap   = 10.0
	certGap    = 4.0

	paragraphIndent = 20.0
	projectIndent   = 15.0
	detailIndent    = 30.0

	// entryHeading 为右对齐的时间段预留的宽度。
	durationReserve = 130.0
)

// 文字与线条颜色（RGB）。
var (
	headingColor   = [3]int{33, 33, 33}
	textColor      = [3]int{55, 55, 55}
	secondaryColor = [3]int{105, 105, 105}
	linkColor      = [3]int{40, 80, 145}
	dividerColor   = [3]int{175, 175, 175}
)

const bulletSeparator = " • "

// ensureSpace 在当前页剩余空间不足 required 时开启新页。
// 新页的光标回到上边距，由 fpdf 的 AddPage 保证。
func (r *renderState) ensureSpace(required float64) {
	if pageHeight-pageMargin-r.doc.GetY() < required {
		r.doc.AddPage()
	}
}
