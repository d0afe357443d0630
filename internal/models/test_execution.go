package models

import "time"

// TestExecution mirrors an RTM test execution. TestCaseSnapshot freezes the
// executed test case as it looked at execution time.
type TestExecution struct {
	IssueFields

	TestPlanKey      string         `gorm:"size:50" json:"test_plan_key"`
	Result           string         `gorm:"size:50" json:"result"` // PASS, FAIL, ...
	ExecutedBy       string         `gorm:"size:100" json:"executed_by"`
	ExecutionDate    *time.Time     `json:"execution_date"`
	TestCaseSnapshot map[string]any `gorm:"serializer:json" json:"test_case_snapshot"`
}

func (TestExecution) TableName() string { return "test_executions" }

func (e *TestExecution) Fields() *IssueFields { return &e.IssueFields }

func (e *TestExecution) Kind() Kind { return KindTestExecution }

func (e *TestExecution) Apply(field string, value any) bool {
	if e.applyCommon(field, value) {
		return true
	}
	switch field {
	case "test_plan_key":
		e.TestPlanKey = asString(value)
	case "result":
		e.Result = asString(value)
	case "executed_by":
		e.ExecutedBy = asString(value)
	case "execution_date":
		e.ExecutionDate = asTime(value)
	case "test_case_snapshot":
		if m, ok := value.(map[string]any); ok {
			e.TestCaseSnapshot = m
		}
	default:
		return false
	}
	return true
}
