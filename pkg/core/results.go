package core

import "time"

// InspectionReport holds the read-only diagnostics of the base table.
type InspectionReport struct {
	Table         string         `json:"table" yaml:"table"`
	RowCount      int64          `json:"row_count" yaml:"row_count"`
	ColumnCount   int            `json:"column_count" yaml:"column_count"`
	Columns       []Column       `json:"columns" yaml:"columns"`
	States        []string       `json:"states" yaml:"states"`
	CountryCounts []CountryCount `json:"country_counts" yaml:"country_counts"`
	NullCounts    []NullCount    `json:"null_counts" yaml:"null_counts"`
}

// CountryCount is the number of projects launched from one country.
type CountryCount struct {
	Country string `json:"country" yaml:"country"`
	Count   int64  `json:"count" yaml:"count"`
}

// NullCount is the number of NULL values in one column.
type NullCount struct {
	Column string `json:"column" yaml:"column"`
	Nulls  int64  `json:"nulls" yaml:"nulls"`
}

// CleanReport counts the rows touched by each cleaning step.
type CleanReport struct {
	DeletedMissing     int64 `json:"deleted_missing" yaml:"deleted_missing"`
	DeletedNonPositive int64 `json:"deleted_non_positive" yaml:"deleted_non_positive"`
	NormalizedCurrency int64 `json:"normalized_currency" yaml:"normalized_currency"`
	Remaining          int64 `json:"remaining" yaml:"remaining"`
}

// Changed reports whether the cleaning pass modified the table.
func (r *CleanReport) Changed() bool {
	return r.DeletedMissing+r.DeletedNonPositive+r.NormalizedCurrency > 0
}

// CategoryCount is the number of projects in one main category.
type CategoryCount struct {
	Category string `json:"main_category" yaml:"main_category"`
	Count    int64  `json:"count" yaml:"count"`
}

// CategoryAverage is the mean pledged amount of one main category.
type CategoryAverage struct {
	Category   string  `json:"main_category" yaml:"main_category"`
	AvgPledged float64 `json:"avg_pledged" yaml:"avg_pledged"`
}

// SuccessRate is the share of successful projects within one group.
// Rate is a percentage in [0, 100] rounded to two decimals.
type SuccessRate struct {
	Key        string  `json:"key" yaml:"key"`
	Total      int64   `json:"total" yaml:"total"`
	Successful int64   `json:"successful" yaml:"successful"`
	Rate       float64 `json:"success_rate" yaml:"success_rate"`
}

// CategoryFunding pairs average funding with success for one category.
type CategoryFunding struct {
	Category    string  `json:"main_category" yaml:"main_category"`
	AvgPledged  float64 `json:"avg_pledged" yaml:"avg_pledged"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
}

// CrossTabRow is the success rate of one (category, country) pair.
type CrossTabRow struct {
	Category    string  `json:"main_category" yaml:"main_category"`
	Country     string  `json:"country" yaml:"country"`
	Total       int64   `json:"total" yaml:"total"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
}

// ProjectFunding is the projection returned by the top projects lookup.
type ProjectFunding struct {
	Name    string  `json:"name" yaml:"name"`
	Pledged float64 `json:"pledged" yaml:"pledged"`
}

// RankedProject is a project annotated with its pledged rank in its category.
type RankedProject struct {
	Project
	Rank int64 `json:"pledged_rank" yaml:"pledged_rank"`
}

// KPISummary is the single row of the project_kpis snapshot.
type KPISummary struct {
	TotalProjects int64   `json:"total_projects" yaml:"total_projects"`
	SuccessRate   float64 `json:"success_rate" yaml:"success_rate"`
	AvgPledged    float64 `json:"avg_pledged" yaml:"avg_pledged"`
	AvgGoal       float64 `json:"avg_goal" yaml:"avg_goal"`
}

// Report bundles every aggregation over the cleaned table.
type Report struct {
	GeneratedAt          time.Time         `json:"generated_at" yaml:"generated_at"`
	CategoryPopularity   []CategoryCount   `json:"category_popularity" yaml:"category_popularity"`
	AvgPledgedByCategory []CategoryAverage `json:"avg_pledged_by_category" yaml:"avg_pledged_by_category"`
	SuccessByCategory    []SuccessRate     `json:"success_by_category" yaml:"success_by_category"`
	TopFunded            []Project         `json:"top_funded" yaml:"top_funded"`
	SuccessByCountry     []SuccessRate     `json:"success_by_country" yaml:"success_by_country"`
	LowSuccessCategories []CategoryFunding `json:"low_success_categories" yaml:"low_success_categories"`
	CategoryCountry      []CrossTabRow     `json:"category_country" yaml:"category_country"`
}

// ResultSet is a generic tabular result, used for views and ad-hoc queries.
type ResultSet struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}
