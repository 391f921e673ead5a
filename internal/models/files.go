package models

const TimestampLayout = "2006-01-02 15:04:05"

// SearchFile is the document written after a sweep and read back by the
// consolidator.
type SearchFile struct {
	SearchID         string           `json:"search_id,omitempty"`
	SearchParameters SearchParameters `json:"search_parameters"`
	Outcomes         []SearchOutcome  `json:"cheapest_option_per_date_pair"`
	Summary          SearchSummary    `json:"search_summary"`
}

type SearchSummary struct {
	TotalCombinations int    `json:"total_combinations"`
	ValidCombinations int    `json:"valid_combinations,omitempty"`
	Succeeded         int    `json:"succeeded,omitempty"`
	NoResult          int    `json:"no_result,omitempty"`
	Errored           int    `json:"errored,omitempty"`
	SearchDate        string `json:"search_date"`
}

type ConsolidationFile struct {
	Summary    ConsolidationSummary `json:"search_summary"`
	Top3       []ConsolidatedFlight `json:"top_3_results"`
	AllResults []ConsolidatedFlight `json:"all_results"`
}

type ConsolidationSummary struct {
	Route                 string   `json:"route"`
	FlightType            string   `json:"flight_type"`
	Period                string   `json:"period"`
	Passengers            string   `json:"passengers"`
	TotalCombinations     int      `json:"total_combinations"`
	AnalysisDate          string   `json:"analysis_date"`
	MonthlyFilesProcessed []string `json:"monthly_files_processed"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
