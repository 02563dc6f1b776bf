package notify

// Sound is an entry of the ringtone table
type Sound struct {
	Key string
	// URL is the source clients stream for this ringtone
	URL string
	// Frequency in Hz of the tone played by the desktop player
	Frequency float64
}

const DefaultRingtone = "default"

var ringtones = map[string]Sound{
	"default": {
		Key:       "default",
		URL:       "https://assets.mixkit.co/sfx/preview/mixkit-alarm-digital-clock-beep-989.mp3",
		Frequency: 880,
	},
	"chime": {
		Key:       "chime",
		URL:       "https://assets.mixkit.co/sfx/preview/mixkit-software-interface-start-2574.mp3",
		Frequency: 1046.5,
	},
	"gentle": {
		Key:       "gentle",
		URL:       "https://assets.mixkit.co/sfx/preview/mixkit-morning-clock-alarm-1003.mp3",
		Frequency: 523.25,
	},
	"urgent": {
		Key:       "urgent",
		URL:       "https://assets.mixkit.co/sfx/preview/mixkit-alarm-tone-996.mp3",
		Frequency: 1318.5,
	},
}

// LookupRingtone returns the sound for key, falling back to the default ringtone
func LookupRingtone(key string) Sound {
	if s, ok := ringtones[key]; ok {
		return s
	}
	return ringtones[DefaultRingtone]
}

// IsRingtone reports whether key names a known ringtone
func IsRingtone(key string) bool {
	_, ok := ringtones[key]
	return ok
}

// Ringtones returns the known ringtone keys
func Ringtones() []string {
	return []string{"default", "chime", "gentle", "urgent"}
}
