package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dharmasatrya/faresweep/internal/models"
	"github.com/dharmasatrya/faresweep/pkg/currency"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderMarkdown renders the summary document.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	origin, destination := r.Params.Origin, r.Params.Destination
	fmt.Fprintf(&b, "# %s 직항 최저가 항공편 분석\n\n", r.Params.Route())

	b.WriteString("## 검색 조건\n\n")
	fmt.Fprintf(&b, "- **노선**: %s(%s) ↔ %s(%s)\n", AirportName(origin), origin, AirportName(destination), destination)
	b.WriteString("- **항공편 유형**: 직항 왕복\n")
	if period := r.Params.Period(); period != "" {
		fmt.Fprintf(&b, "- **검색 기간**: %s\n", period)
	}
	fmt.Fprintf(&b, "- **승객**: %s\n", r.Params.PassengerSummary())
	if r.Params.MaxStayDays > 0 {
		fmt.Fprintf(&b, "- **체류일**: %d~%d일\n", r.Params.MinStayDays, r.Params.MaxStayDays)
	}
	b.WriteString("\n")

	if r.Empty {
		b.WriteString("## 결과\n\n조건에 맞는 직항 항공편이 없습니다.\n\n")
		writeRunLog(&b, r)
		writeFiles(&b, r)
		return b.String()
	}

	fmt.Fprintf(&b, "## 최저가 상위 %d개 결과\n\n", len(r.Top))
	WriteTable(&b, r.Top)

	b.WriteString("\n## 검색 요약\n\n")
	fmt.Fprintf(&b, "- **총 조합 수**: %d개\n", r.Total)
	fmt.Fprintf(&b, "- **분석 일시**: %s\n", r.GeneratedAt.Format(models.TimestampLayout))

	b.WriteString("\n## 가격 통계\n\n")
	writePrices(&b, r.Stats)

	b.WriteString("\n## 항공사별 통계\n\n")
	writeCarriers(&b, r.Carriers)
	b.WriteString("\n")

	writeRunLog(&b, r)

	c := r.Cheapest
	b.WriteString("## 결론\n\n")
	fmt.Fprintf(&b, "**최저가 항공편**: %s %s\n\n", c.Flight.Airline, c.Flight.Price)
	fmt.Fprintf(&b, "- 출발: %s (%s)\n", c.Flight.DepartureDate, c.Flight.DepartureTime)
	fmt.Fprintf(&b, "- 복귀: %s\n", c.Flight.ReturnDate)
	fmt.Fprintf(&b, "- 체류: %d일\n", c.StayDays)
	fmt.Fprintf(&b, "- 소요시간: %s (직항)\n\n", c.Flight.Duration)
	fmt.Fprintf(&b, "이 항공편이 검색 기간 중 %s 노선의 최저가 직항 왕복 항공편입니다.\n\n", r.Params.Route())

	writeFiles(&b, r)
	return b.String()
}

// WriteTable writes flights as a ranked Markdown table.
func WriteTable(w io.Writer, flights []models.ConsolidatedFlight) {
	io.WriteString(w, "| 순위 | 출발일 | 복귀일 | 항공편 | 총요금 | 출발시간 | 도착시간 | 소요시간 |\n")
	io.WriteString(w, "| ---- | ------ | ------ | ------ | ------ | -------- | -------- | -------- |\n")
	for i, f := range flights {
		fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %s | %s | %s |\n",
			i+1, f.DepartureDate, f.ReturnDate, cell(f.Airline), cell(f.Price),
			cell(StripDateMarker(f.DepartureTime, DefaultDateMarker)),
			cell(StripDateMarker(f.ArrivalTime, DefaultDateMarker)),
			cell(f.Duration))
	}
}

// WriteStatistics writes the price and carrier statistics of a non-empty
// report.
func WriteStatistics(w io.Writer, r *Report) {
	if r.Empty {
		return
	}
	fmt.Fprintf(w, "- **총 조합 수**: %d개\n", r.Total)
	writePrices(w, r.Stats)
	io.WriteString(w, "\n")
	writeCarriers(w, r.Carriers)
}

func writePrices(w io.Writer, s *PriceStats) {
	fmt.Fprintf(w, "- **최저가**: %s\n", currency.FormatKRW(s.Min))
	fmt.Fprintf(w, "- **최고가**: %s\n", currency.FormatKRW(s.Max))
	fmt.Fprintf(w, "- **평균가**: %s\n", currency.FormatKRWFloat(s.Mean))
}

func writeCarriers(w io.Writer, carriers []CarrierStat) {
	for _, c := range carriers {
		fmt.Fprintf(w, "- **%s**: %d개 조합, 최저가 %s\n", c.Airline, c.Count, currency.FormatKRW(c.MinPrice))
	}
}

func writeRunLog(b *strings.Builder, r *Report) {
	b.WriteString("## 조사 로그\n\n")
	if len(r.Log.SkippedFiles) == 0 {
		b.WriteString("- **건너뛴 파일**: 없음\n")
	} else {
		fmt.Fprintf(b, "- **건너뛴 파일**: %s\n", strings.Join(r.Log.SkippedFiles, ", "))
	}
	if r.Log.FailedPairs == 0 {
		b.WriteString("- **실패 호출**: 없음\n")
	} else {
		fmt.Fprintf(b, "- **실패 호출**: %d건\n", r.Log.FailedPairs)
	}
	if r.Log.NoResult > 0 {
		fmt.Fprintf(b, "- **결과 없음**: %d건\n", r.Log.NoResult)
	}
	for _, note := range r.Log.Notes {
		fmt.Fprintf(b, "- %s\n", note)
	}
	b.WriteString("\n")
}

func writeFiles(b *strings.Builder, r *Report) {
	if len(r.Files) == 0 {
		return
	}
	b.WriteString("## 생성된 파일들\n\n")
	for _, f := range r.Files {
		fmt.Fprintf(b, "- `%s`\n", f)
	}
}

// cell keeps provider text from breaking the table layout.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderHTML renders the Markdown summary as a standalone HTML page.
func RenderHTML(r *Report) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(RenderMarkdown(r)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"ko\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(r.Params.Route()))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
