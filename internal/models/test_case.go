package models

// TestStep is one row of a test case's ordered step table.
type TestStep struct {
	Action   string `json:"action"`
	Data     string `json:"data"`
	Expected string `json:"expected"`
}

// TestCase mirrors an RTM test case, including its ordered steps.
type TestCase struct {
	IssueFields

	Steps         []TestStep `gorm:"serializer:json" json:"steps"`
	Preconditions string     `gorm:"type:text" json:"preconditions"`
}

func (TestCase) TableName() string { return "test_cases" }

func (t *TestCase) Fields() *IssueFields { return &t.IssueFields }

func (t *TestCase) Kind() Kind { return KindTestCase }

func (t *TestCase) Apply(field string, value any) bool {
	if t.applyCommon(field, value) {
		return true
	}
	switch field {
	case "steps":
		t.Steps = asSteps(value)
	case "preconditions":
		t.Preconditions = asString(value)
	default:
		return false
	}
	return true
}

// asSteps accepts either typed steps or the generic []any shape produced by
// JSON decoding.
func asSteps(v any) []TestStep {
	switch s := v.(type) {
	case []TestStep:
		return s
	case []any:
		steps := make([]TestStep, 0, len(s))
		for _, item := range s {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			steps = append(steps, TestStep{
				Action:   asString(m["action"]),
				Data:     asString(m["data"]),
				Expected: asString(m["expected"]),
			})
		}
		return steps
	}
	return nil
}
