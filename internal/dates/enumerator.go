package dates

import (
	"iter"
	"time"

	"github.com/dharmasatrya/faresweep/internal/models"
)

const day = 24 * time.Hour

// Enumerator walks every (departure, return) pair in [start, end] with
// departure <= return, yielding only the pairs whose stay length lies in
// [minStay, maxStay]. Total and Valid count what the walk has seen so far.
type Enumerator struct {
	start   time.Time
	end     time.Time
	minStay int
	maxStay int

	total int
	valid int
}

func New(start, end time.Time, minStay, maxStay int) *Enumerator {
	return &Enumerator{
		start:   truncate(start),
		end:     truncate(end),
		minStay: minStay,
		maxStay: maxStay,
	}
}

// FromParams builds an enumerator over a normalized parameter window.
func FromParams(p models.SearchParameters) (*Enumerator, error) {
	start, end, err := p.Window()
	if err != nil {
		return nil, err
	}
	return New(start, end, p.MinStayDays, p.MaxStayDays), nil
}

// All resets the counters and returns the lazy sequence of valid pairs,
// ordered by departure then return.
func (e *Enumerator) All() iter.Seq[models.DatePair] {
	return func(yield func(models.DatePair) bool) {
		e.total, e.valid = 0, 0
		for dep := e.start; !dep.After(e.end); dep = dep.Add(day) {
			for ret := dep; !ret.After(e.end); ret = ret.Add(day) {
				e.total++
				pair := models.DatePair{Departure: dep, Return: ret}
				if !e.accepts(pair.StayDays()) {
					continue
				}
				e.valid++
				if !yield(pair) {
					return
				}
			}
		}
	}
}

// Count returns the total and valid pair counts without walking the dates.
func (e *Enumerator) Count() (total, valid int) {
	if e.end.Before(e.start) {
		return 0, 0
	}
	days := int(e.end.Sub(e.start)/day) + 1
	total = days * (days + 1) / 2

	// A stay of s days fits (days - s) times in the window.
	for s := max(e.minStay, 0); s <= e.maxStay && s < days; s++ {
		valid += days - s
	}
	return total, valid
}

func (e *Enumerator) Total() int { return e.total }

func (e *Enumerator) Valid() int { return e.valid }

// Days lists each date in the window.
func (e *Enumerator) Days() int {
	if e.end.Before(e.start) {
		return 0
	}
	return int(e.end.Sub(e.start)/day) + 1
}

func (e *Enumerator) accepts(stay int) bool {
	return e.minStay <= stay && stay <= e.maxStay
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
