package handler

import (
	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/internal/report"
	"github.com/dharmasatrya/faresweep/internal/search"
)

type PairFailure struct {
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	Category      string `json:"category"`
	Message       string `json:"message"`
}

type SweepResponse struct {
	SearchID     string                  `json:"search_id"`
	Params       models.SearchParameters `json:"search_parameters"`
	State        search.State            `json:"state"`
	Progress     search.Progress         `json:"progress"`
	Outcomes     []models.SearchOutcome  `json:"cheapest_option_per_date_pair"`
	Failures     []PairFailure           `json:"failures"`
	Report       *report.Report          `json:"report"`
	SavedTo      string                  `json:"saved_to,omitempty"`
	SearchTimeMs int64                   `json:"search_time_ms"`
}

type ConsolidateRequest struct {
	Origin      string                   `json:"origin"`
	Destination string                   `json:"destination"`
	TopN        int                      `json:"top_n"`
	Sources     [][]models.SearchOutcome `json:"sources"`
}

type ConsolidateResponse struct {
	Considered int                         `json:"considered"`
	Eligible   int                         `json:"eligible"`
	Top        []models.ConsolidatedFlight `json:"top"`
	All        []models.ConsolidatedFlight `json:"all_results"`
	Report     *report.Report              `json:"report"`
}
