package utils

import "crypto/rand"

// bookingAlphabet excludes the ambiguous characters 0/O and 1/I so the
// number survives being read over the phone or typed at a kiosk.
const bookingAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// BookingNumberLen is the length of generated booking numbers.
const BookingNumberLen = 8

// NewBookingNumber returns a random human-friendly booking reference
// such as "K7PQ2M9A". Uniqueness is enforced by the database; callers
// retry on collision.
func NewBookingNumber() (string, error) {
	buf := make([]byte, BookingNumberLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = bookingAlphabet[int(b)%len(bookingAlphabet)]
	}
	return string(buf), nil
}
