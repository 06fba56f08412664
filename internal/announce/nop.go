package announce

// NopSpeaker discards all speech. Used with --mute and in tests.
type NopSpeaker struct{}

func (NopSpeaker) Speak(string) error { return nil }

func (NopSpeaker) SpeakThen(_ string, done func()) error {
	if done != nil {
		done()
	}
	return nil
}

func (NopSpeaker) Stop() {}
