package mailer

import (
	"context"
	"fmt"
	"strings"
)

// BookingConfirmation carries everything the confirmation email
// mentions. Kept free of other packages' types so any producer can
// fill it in.
type BookingConfirmation struct {
	BookingNumber   string
	UserEmail       string
	UserName        string
	MovieTitle      string
	CinemaName      string
	RoomName        string
	StartsAt        string
	SeatLabels      []string
	TicketCount     uint32
	TotalPriceCents uint32
}

// SendBookingConfirmation renders and sends the booking confirmation
// email, optionally attaching the PDF e-ticket.
func (m *Mailer) SendBookingConfirmation(ctx context.Context, bc BookingConfirmation, ticket []byte) error {
	subject := fmt.Sprintf("Your tickets for %s (booking %s)", bc.MovieTitle, bc.BookingNumber)

	var seats string
	if len(bc.SeatLabels) > 0 {
		seats = fmt.Sprintf("<p><strong>Seats:</strong> %s</p>", strings.Join(bc.SeatLabels, ", "))
	}
	html := fmt.Sprintf(`
		<h2>Booking confirmed</h2>
		<p>Hi %s,</p>
		<p>Your booking <strong>%s</strong> is confirmed.</p>
		<p><strong>%s</strong><br>%s, %s<br>%s</p>
		%s
		<p><strong>Tickets:</strong> %d<br><strong>Total:</strong> %.2f</p>
		<p>Show this email or the attached ticket at the entrance.</p>`,
		bc.UserName, bc.BookingNumber,
		bc.MovieTitle, bc.CinemaName, bc.RoomName, bc.StartsAt,
		seats, bc.TicketCount, float64(bc.TotalPriceCents)/100)

	var atts []Attachment
	if len(ticket) > 0 {
		atts = append(atts, NewAttachment(fmt.Sprintf("ticket-%s.pdf", bc.BookingNumber), ticket))
	}
	return m.Send(ctx, bc.UserEmail, subject, html, atts...)
}
