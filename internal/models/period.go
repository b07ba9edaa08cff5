package models

import (
	"fmt"
	"time"
)

// Quarter is a calendar quarter, 1..4.
type Quarter int

const (
	Q1 Quarter = iota + 1
	Q2
	Q3
	Q4
)

func (q Quarter) String() string {
	if q < Q1 || q > Q4 {
		return "Q?"
	}
	return fmt.Sprintf("Q%d", int(q))
}

// Half returns the half-year containing q.
func (q Quarter) Half() Half {
	if q >= Q3 {
		return H2
	}
	return H1
}

// Half is a half-year, 1..2.
type Half int

const (
	H1 Half = iota + 1
	H2
)

func (h Half) String() string {
	if h != H1 && h != H2 {
		return "H?"
	}
	return fmt.Sprintf("H%d", int(h))
}

// Contains reports whether q falls within h.
func (h Half) Contains(q Quarter) bool {
	return q >= Q1 && q <= Q4 && q.Half() == h
}

// Period locates an instant in every reporting calendar used by obligations.
// BiWeekYear is the anchor year of BiWeek; the index alone is ambiguous across years.
type Period struct {
	Date       string     `json:"date"`
	Month      time.Month `json:"month"`
	Quarter    Quarter    `json:"quarter"`
	Half       Half       `json:"half"`
	Year       int        `json:"year"`
	BiWeek     int        `json:"biWeek"`
	BiWeekYear int        `json:"biWeekYear"`
}
