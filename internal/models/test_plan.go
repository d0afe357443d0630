package models

import "time"

// TestPlan mirrors an RTM test plan.
type TestPlan struct {
	IssueFields

	TargetEnv string     `gorm:"size:100" json:"target_env"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (TestPlan) TableName() string { return "test_plans" }

func (p *TestPlan) Fields() *IssueFields { return &p.IssueFields }

func (p *TestPlan) Kind() Kind { return KindTestPlan }

func (p *TestPlan) Apply(field string, value any) bool {
	if p.applyCommon(field, value) {
		return true
	}
	switch field {
	case "target_env":
		p.TargetEnv = asString(value)
	case "start_date":
		p.StartDate = asTime(value)
	case "end_date":
		p.EndDate = asTime(value)
	default:
		return false
	}
	return true
}
