package models

// IssueLink is an unordered pair of issue keys with a relation label
// ("tests", "blocks", ...). Links are append-only; duplicates are allowed.
type IssueLink struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SourceKey string `gorm:"size:50;not null;index" json:"source_key"`
	TargetKey string `gorm:"size:50;not null;index" json:"target_key"`
	LinkType  string `gorm:"size:50" json:"link_type"`
}

func (IssueLink) TableName() string { return "issue_links" }

// Link directions as seen from a queried key.
const (
	DirectionOutward = "Outward"
	DirectionInward  = "Inward"
)

// LinkView is a link as seen from one endpoint.
type LinkView struct {
	ID        uint   `json:"id"`
	LinkType  string `json:"link_type"`
	OtherKey  string `json:"other_key"`
	Direction string `json:"direction"`
}
