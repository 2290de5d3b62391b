package tui

import (
	"github.com/tilevision/tilevision/internal/photo"
)

type cameraStartedMsg struct {
	err error
}

type frameCapturedMsg struct {
	frame *photo.Encoded
	err   error
}

type fileLoadedMsg struct {
	frame *photo.Encoded
	err   error
}

type pairGeneratedMsg struct {
	seq    uint64
	images [2]*photo.Encoded
	err    error
}

type slotRegeneratedMsg struct {
	seq   uint64
	image *photo.Encoded
	err   error
}

type designSavedMsg struct {
	path    string
	history []string
	err     error
}
