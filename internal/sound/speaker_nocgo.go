//go:build !cgo && linux

package sound

import (
	"errors"

	"github.com/gopxl/beep"
)

// ErrNoAudio is returned on Linux builds without cgo, where the ALSA
// backend of the speaker cannot be linked.
var ErrNoAudio = errors.New("sound: built without cgo, audio disabled")

func openSpeaker() (func(beep.Streamer), error) {
	return nil, ErrNoAudio
}

func closeSpeaker() {}
