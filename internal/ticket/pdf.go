// Package ticket renders PDF e-tickets for confirmed bookings.
package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Data holds everything printed on an e-ticket.
type Data struct {
	BookingNumber string
	HolderName    string
	MovieTitle    string
	CinemaName    string
	RoomName      string
	StartsAt      time.Time
	Seats         []string
	TicketCount   uint32
	TotalCents    uint32
}

// Build renders the e-ticket to PDF bytes and a suggested filename.
func Build(d Data) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	seats := "free seating"
	if len(d.Seats) > 0 {
		seats = strings.Join(d.Seats, ", ")
	}
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking   : %s", d.BookingNumber),
		fmt.Sprintf("Name      : %s", d.HolderName),
		fmt.Sprintf("Movie     : %s", d.MovieTitle),
		fmt.Sprintf("Cinema    : %s, %s", d.CinemaName, d.RoomName),
		fmt.Sprintf("Starts    : %s", d.StartsAt.Format("Mon, 02 Jan 2006 15:04")),
		fmt.Sprintf("Seats     : %s", seats),
		fmt.Sprintf("Tickets   : %d", d.TicketCount),
		fmt.Sprintf("Total     : %.2f", float64(d.TotalCents)/100),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please arrive before the showing starts and present this ticket at the entrance.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ticket-%s.pdf", d.BookingNumber)
	return buf.Bytes(), filename, nil
}
