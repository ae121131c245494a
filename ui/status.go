package ui

import "time"

// StatusTTL is how long a status message stays on screen.
const StatusTTL = 4 * time.Second

// StatusLine is a one-line message (snapshot path, errors) that expires.
type StatusLine struct {
	text  string
	until time.Time
}

// Set shows msg until now+StatusTTL. An empty msg clears the line.
func (s *StatusLine) Set(msg string, now time.Time) {
	s.text = msg
	s.until = now.Add(StatusTTL)
}

// Clear removes the message.
func (s *StatusLine) Clear() {
	s.text = ""
}

// Text returns the message, or "" once it expired.
func (s *StatusLine) Text(now time.Time) string {
	if s.text != "" && !now.Before(s.until) {
		s.text = ""
	}
	return s.text
}
