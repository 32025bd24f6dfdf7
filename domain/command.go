package domain

// PostMessageCommand is what a visitor submits: raw name and message, plus
// zero or more uploads tagged with their kind.
type PostMessageCommand struct {
	Name    string
	Message string
	Uploads []Upload
}
