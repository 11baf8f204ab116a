package resume

// Record 表示存储在简历 Content(JSONB) 中的结构化数据。
// 字段约束（必填、长度、数组上限）由 API 层的 binding 校验保证，
// 渲染器直接信任这里的值。
type Record struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Nickname  string `json:"nickname,omitempty" binding:"max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,max=40"`

	// Photo 是 data URI 形式的 base64 图片（jpeg/png/webp）。
	Photo string `json:"photo,omitempty"`

	Links   []Link `json:"links,omitempty" binding:"max=10,dive"`
	Summary string `json:"summary" binding:"required,max=2000"`

	Experience   []Experience  `json:"experience,omitempty" binding:"max=20,dive"`
	Education    []Education   `json:"education,omitempty" binding:"max=10,dive"`
	Languages    []Language    `json:"languages,omitempty" binding:"max=20,dive"`
	Skills       []string      `json:"skills,omitempty" binding:"max=50,dive,max=100"`
	Certificates []Certificate `json:"certificates,omitempty" binding:"max=20,dive"`
}

// LinkType 标识联系链接的种类。
type LinkType string

const (
	LinkGit       LinkType = "git"
	LinkPortfolio LinkType = "portfolio"
	LinkLinkedIn  LinkType = "linkedin"
	LinkOther     LinkType = "other"
)

// Link 是 Header 区域的一条外部链接。
// Label 仅在 Type == LinkOther 时使用。
type Link struct {
	Type  LinkType `json:"type" binding:"required,oneof=git portfolio linkedin other"`
	URL   string   `json:"url" binding:"required,max=500"`
	Label string   `json:"label,omitempty" binding:"max=100"`
}

// Experience 是一段工作经历。Current 为 true 时结束日期被忽略。
type Experience struct {
	Company     string    `json:"company" binding:"required,max=200"`
	Position    string    `json:"position" binding:"required,max=200"`
	StartMonth  string    `json:"start_month" binding:"required,max=20"`
	StartYear   string    `json:"start_year" binding:"required,max=10"`
	EndMonth    string    `json:"end_month,omitempty" binding:"max=20"`
	EndYear     string    `json:"end_year,omitempty" binding:"max=10"`
	Current     bool      `json:"current"`
	Description string    `json:"description" binding:"required,max=2000"`
	Projects    []Project `json:"projects,omitempty" binding:"max=10,dive"`
}

// Project 是工作经历下的子项目。
type Project struct {
	Name   string `json:"name" binding:"required,max=200"`
	Detail string `json:"detail,omitempty" binding:"max=500"`
}

// Education 是一段教育经历，日期只精确到年份。
type Education struct {
	Institution string `json:"institution" binding:"required,max=200"`
	Degree      string `json:"degree" binding:"required,max=200"`
	Field       string `json:"field,omitempty" binding:"max=200"`
	StartYear   string `json:"start_year" binding:"required,max=10"`
	EndYear     string `json:"end_year,omitempty" binding:"max=10"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty" binding:"max=1000"`
}

// Proficiency 是语言水平的五级枚举。
type Proficiency string

const (
	LevelBasic          Proficiency = "basic"
	LevelConversational Proficiency = "conversational"
	LevelProficient     Proficiency = "proficient"
	LevelFluent         Proficiency = "fluent"
	LevelNative         Proficiency = "native"
)

// Language 是语言与水平的组合。
type Language struct {
	Name  string      `json:"name" binding:"required,max=100"`
	Level Proficiency `json:"level" binding:"required,oneof=basic conversational proficient fluent native"`
}

// Certificate 是一条证书记录，年份可选。
type Certificate struct {
	Name   string `json:"name" binding:"required,max=200"`
	Issuer string `json:"issuer" binding:"required,max=200"`
	Year   string `json:"year,omitempty" binding:"max=10"`
}
