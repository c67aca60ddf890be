package core

// StateSuccessful is the project state that counts towards every success rate.
const StateSuccessful = "successful"

// DefaultTable is the base relation the workflow reads and cleans.
const DefaultTable = "projects"

// RequiredColumns lists the columns the base table must carry.
var RequiredColumns = []string{
	"id", "name", "category", "main_category", "country",
	"currency", "goal", "pledged", "backers", "state",
}

// Project is one crowdfunding campaign record.
// NULL text values are surfaced as empty strings and NULL numbers as zero.
type Project struct {
	ID           int64   `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Category     string  `json:"category" yaml:"category"`
	MainCategory string  `json:"main_category" yaml:"main_category"`
	Country      string  `json:"country" yaml:"country"`
	Currency     string  `json:"currency" yaml:"currency"`
	Goal         float64 `json:"goal" yaml:"goal"`
	Pledged      float64 `json:"pledged" yaml:"pledged"`
	Backers      int64   `json:"backers" yaml:"backers"`
	State        string  `json:"state" yaml:"state"`
}

// IsSuccessful reports whether the project reached its funding outcome.
func (p Project) IsSuccessful() bool {
	return p.State == StateSuccessful
}
