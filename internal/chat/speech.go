package chat

import (
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// speakCommand is swappable in tests so Say never shells out there.
var speakCommand = func(text string) *exec.Cmd {
	return exec.Command("espeak-ng", "-v", "en+m3", "-s", "160", text)
}

// Speaker voices replies through espeak-ng. Muted speakers just log.
type Speaker struct {
	mute bool
}

func NewSpeaker(mute bool) *Speaker {
	return &Speaker{mute: mute}
}

func (s *Speaker) Say(text string) error {
	if s.mute || text == "" {
		return nil
	}

	out, err := speakCommand(text).CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng: %v (output: %s)", err, string(out))
	}
	log.Debug().Int("chars", len(text)).Msg("Spoke reply")
	return nil
}
