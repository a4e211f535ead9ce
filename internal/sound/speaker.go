//go:build cgo || !linux

package sound

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

func openSpeaker() (func(beep.Streamer), error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return func(s beep.Streamer) { speaker.Play(s) }, nil
}

func closeSpeaker() {
	speaker.Close()
}
