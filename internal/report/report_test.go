package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/pkg/currency"
)

var generated = time.Date(2025, 5, 20, 10, 30, 0, 0, time.UTC)

func params() models.SearchParameters {
	return models.SearchParameters{
		Origin:      "PUS",
		Destination: "NRT",
		StartDate:   "2025-06-01",
		EndDate:     "2025-06-30",
		MinStayDays: 5,
		MaxStayDays: 7,
		Adults:      1,
		SeatType:    models.SeatEconomy,
	}
}

func flight(dep, ret, airline string, price currency.Amount) models.ConsolidatedFlight {
	return models.ConsolidatedFlight{
		DepartureDate: dep,
		ReturnDate:    ret,
		Airline:       airline,
		DepartureTime: "8:05 AM on Sun, Jun 1",
		ArrivalTime:   "10:15 AM on Sun, Jun 1",
		Duration:      "2 hr 10 min",
		Price:         currency.FormatKRW(price),
		PriceNumeric:  price,
	}
}

func TestBuildEmpty(t *testing.T) {
	r := Build(nil, 3, params(), generated)

	assert.True(t, r.Empty)
	assert.Empty(t, r.Top)
	assert.NotNil(t, r.Top)
	assert.Nil(t, r.Stats)
	assert.Nil(t, r.Cheapest)
	assert.Zero(t, r.Total)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "조건에 맞는 직항 항공편이 없습니다")
	assert.NotContains(t, md, "## 결론")
}

func TestBuildStatistics(t *testing.T) {
	flights := []models.ConsolidatedFlight{
		flight("2025-06-03", "2025-06-08", "B", 450000),
		flight("2025-06-01", "2025-06-06", "A", 500000),
		flight("2025-06-02", "2025-06-09", "A", 550000),
		flight("2025-06-04", "2025-06-10", "C", 600000),
	}

	r := Build(flights, 3, params(), generated)

	require.False(t, r.Empty)
	assert.Equal(t, 4, r.Total)
	assert.Len(t, r.Top, 3)

	require.NotNil(t, r.Stats)
	assert.Equal(t, currency.Amount(450000), r.Stats.Min)
	assert.Equal(t, currency.Amount(600000), r.Stats.Max)
	assert.InDelta(t, 525000.0, r.Stats.Mean, 0.001)

	assert.Equal(t, []CarrierStat{
		{Airline: "B", Count: 1, MinPrice: 450000},
		{Airline: "A", Count: 2, MinPrice: 500000},
		{Airline: "C", Count: 1, MinPrice: 600000},
	}, r.Carriers)

	require.NotNil(t, r.Cheapest)
	assert.Equal(t, "B", r.Cheapest.Flight.Airline)
	assert.Equal(t, 5, r.Cheapest.StayDays)
}

func TestBuildCarrierTiesKeepFirstSeen(t *testing.T) {
	flights := []models.ConsolidatedFlight{
		flight("2025-06-01", "2025-06-06", "Peach", 300000),
		flight("2025-06-02", "2025-06-07", "Jeju Air", 300000),
	}

	r := Build(flights, 3, params(), generated)

	require.Len(t, r.Carriers, 2)
	assert.Equal(t, "Peach", r.Carriers[0].Airline)
	assert.Equal(t, "Jeju Air", r.Carriers[1].Airline)
}

func TestBuildTopLargerThanSet(t *testing.T) {
	r := Build([]models.ConsolidatedFlight{flight("2025-06-01", "2025-06-06", "A", 300000)}, 10, params(), generated)
	assert.Len(t, r.Top, 1)

	r = Build([]models.ConsolidatedFlight{flight("2025-06-01", "2025-06-06", "A", 300000)}, -1, params(), generated)
	assert.Empty(t, r.Top)
	assert.NotNil(t, r.Stats)
}

func TestStripDateMarker(t *testing.T) {
	tests := []struct {
		in, marker, want string
	}{
		{"8:05 AM on Sun, Jun 1", DefaultDateMarker, "8:05 AM"},
		{"8:05 AM", DefaultDateMarker, "8:05 AM"},
		{"", DefaultDateMarker, ""},
		{"8:05 AM on Sun on Mon", DefaultDateMarker, "8:05 AM"},
		{"8:05 AM on Sun", "", "8:05 AM on Sun"},
		{"08:05 @ 2025-06-01", " @", "08:05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripDateMarker(tt.in, tt.marker), tt.in)
	}
}

func TestAirportName(t *testing.T) {
	assert.Equal(t, "김해국제공항", AirportName("PUS"))
	assert.Equal(t, "HND", AirportName("HND"))
}

func TestRenderMarkdown(t *testing.T) {
	flights := []models.ConsolidatedFlight{
		flight("2025-06-03", "2025-06-08", "B", 450000),
		flight("2025-06-01", "2025-06-06", "A", 500000),
	}
	r := Build(flights, 3, params(), generated)
	r.Log.FailedPairs = 2
	r.Files = []string{"PUS_NRT_flight_results.json", "PUS_NRT_final_results_summary.md"}

	md := RenderMarkdown(r)

	assert.True(t, strings.HasPrefix(md, "# PUS ↔ NRT 직항 최저가 항공편 분석"))
	assert.Contains(t, md, "김해국제공항(PUS) ↔ 도쿄(NRT)")
	assert.Contains(t, md, "| 1 | 2025-06-03 | 2025-06-08 | B | ₩450,000 | 8:05 AM | 10:15 AM | 2 hr 10 min |")
	assert.Contains(t, md, "- **평균가**: ₩475,000")
	assert.Contains(t, md, "- **A**: 1개 조합, 최저가 ₩500,000")
	assert.Contains(t, md, "- **실패 호출**: 2건")
	assert.Contains(t, md, "- 체류: 5일")
	assert.Contains(t, md, "`PUS_NRT_flight_results.json`")
	assert.Less(t, strings.Index(md, "- **B**"), strings.Index(md, "- **A**"))
}

func TestRenderHTML(t *testing.T) {
	r := Build([]models.ConsolidatedFlight{flight("2025-06-01", "2025-06-06", "A", 300000)}, 3, params(), generated)

	out, err := RenderHTML(r)
	require.NoError(t, err)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h1>")
	assert.Contains(t, out, "<title>PUS ↔ NRT</title>")
}

func TestWriteStatistics(t *testing.T) {
	var b strings.Builder
	WriteStatistics(&b, Build(nil, 5, params(), generated))
	assert.Empty(t, b.String())

	r := Build([]models.ConsolidatedFlight{
		flight("2025-06-01", "2025-06-06", "A", 300000),
		flight("2025-06-02", "2025-06-07", "A", 320001),
	}, 5, params(), generated)
	WriteStatistics(&b, r)

	assert.Contains(t, b.String(), "- **총 조합 수**: 2개")
	assert.Contains(t, b.String(), "- **평균가**: ₩310,001")
	assert.Contains(t, b.String(), "- **A**: 2개 조합, 최저가 ₩300,000")
}
