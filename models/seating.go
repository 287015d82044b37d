package models

import "fmt"

// Seat is ephemeral: generated fresh from a category string on every
// layout load, never persisted.
type Seat struct {
	ID    string `json:"id"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	IsVip bool   `json:"is_vip"`
}

// SeatLayout is a rectangular grid with the first VIPRows rows flagged
// VIP. Rows are labeled A, B, C, ...; seat ids are "<rowLetter><col>"
// with col 1-based.
type SeatLayout struct {
	Category string   `json:"category"`
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	VIPRows  int      `json:"vip_rows"`
	Seats    [][]Seat `json:"seats"`
}

// SeatID builds the canonical seat id for a 0-based row and 1-based col.
func SeatID(row, col int) string {
	return fmt.Sprintf("%c%d", 'A'+rune(row), col)
}

// Find returns the seat with the given id, or nil.
func (l *SeatLayout) Find(id string) *Seat {
	for i := range l.Seats {
		for j := range l.Seats[i] {
			if l.Seats[i][j].ID == id {
				return &l.Seats[i][j]
			}
		}
	}
	return nil
}
