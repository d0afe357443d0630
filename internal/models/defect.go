package models

// Defect mirrors an RTM defect.
type Defect struct {
	IssueFields

	Severity    string `gorm:"size:50" json:"severity"`
	Environment string `gorm:"size:100" json:"environment"`
}

func (Defect) TableName() string { return "defects" }

func (d *Defect) Fields() *IssueFields { return &d.IssueFields }

func (d *Defect) Kind() Kind { return KindDefect }

func (d *Defect) Apply(field string, value any) bool {
	if d.applyCommon(field, value) {
		return true
	}
	switch field {
	case "severity":
		d.Severity = asString(value)
	case "environment":
		d.Environment = asString(value)
	default:
		return false
	}
	return true
}
