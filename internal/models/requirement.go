package models

// Requirement mirrors an RTM requirement node.
type Requirement struct {
	IssueFields

	FixVersion string `gorm:"size:50" json:"fix_version"`
	Components string `gorm:"size:255" json:"components"`
}

func (Requirement) TableName() string { return "requirements" }

func (r *Requirement) Fields() *IssueFields { return &r.IssueFields }

func (r *Requirement) Kind() Kind { return KindRequirement }

func (r *Requirement) Apply(field string, value any) bool {
	if r.applyCommon(field, value) {
		return true
	}
	switch field {
	case "fix_version":
		r.FixVersion = asString(value)
	case "components":
		r.Components = asString(value)
	default:
		return false
	}
	return true
}
