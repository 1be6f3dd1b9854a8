package ui

// BoardChanged tells the app to take a fresh board snapshot.
type BoardChanged struct{}

// noticeExpired hides the notice with the given sequence number, if it is
// still the one on screen.
type noticeExpired struct {
	seq int
}
