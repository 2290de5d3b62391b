package tui

type ApplicationState int

const (
	StateWelcome ApplicationState = iota
	StateCapture
	StateCategories
	StateCompare
	StateSaved
	StateError
)
