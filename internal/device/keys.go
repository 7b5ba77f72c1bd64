package device

import (
	"sort"

	"github.com/ibs-source/rc-bridge/internal/message"
)

// Key is a symbolic remote-control key exchanged on the bus.
type Key string

// Key vocabulary.
const (
	KeyPower       Key = "power"
	KeyHome        Key = "home"
	KeyBack        Key = "back"
	KeyMenu        Key = "menu"
	KeyUp          Key = "up"
	KeyDown        Key = "down"
	KeyLeft        Key = "left"
	KeyRight       Key = "right"
	KeySelect      Key = "select"
	KeyVolumeUp    Key = "volume_up"
	KeyVolumeDown  Key = "volume_down"
	KeyMute        Key = "mute"
	KeyChannelUp   Key = "channel_up"
	KeyChannelDown Key = "channel_down"
	KeyPlay        Key = "play"
	KeyPause       Key = "pause"
	KeyPlayPause   Key = "play_pause"
	KeyStop        Key = "stop"
	KeyFastForward Key = "fast_forward"
	KeyRewind      Key = "rewind"
	KeyNext        Key = "next"
	KeyPrevious    Key = "previous"
	KeyInfo        Key = "info"
	KeyGuide       Key = "guide"
	KeySettings    Key = "settings"
	KeySearch      Key = "search"
	Key0           Key = "digit_0"
	Key1           Key = "digit_1"
	Key2           Key = "digit_2"
	Key3           Key = "digit_3"
	Key4           Key = "digit_4"
	Key5           Key = "digit_5"
	Key6           Key = "digit_6"
	Key7           Key = "digit_7"
	Key8           Key = "digit_8"
	Key9           Key = "digit_9"
)

var vocabulary = map[Key]struct{}{
	KeyPower: {}, KeyHome: {}, KeyBack: {}, KeyMenu: {},
	KeyUp: {}, KeyDown: {}, KeyLeft: {}, KeyRight: {}, KeySelect: {},
	KeyVolumeUp: {}, KeyVolumeDown: {}, KeyMute: {},
	KeyChannelUp: {}, KeyChannelDown: {},
	KeyPlay: {}, KeyPause: {}, KeyPlayPause: {}, KeyStop: {},
	KeyFastForward: {}, KeyRewind: {}, KeyNext: {}, KeyPrevious: {},
	KeyInfo: {}, KeyGuide: {}, KeySettings: {}, KeySearch: {},
	Key0: {}, Key1: {}, Key2: {}, Key3: {}, Key4: {},
	Key5: {}, Key6: {}, Key7: {}, Key8: {}, Key9: {},
}

// ParseKey validates a key name against the vocabulary.
func ParseKey(name string) (Key, error) {
	if name == "" {
		return "", message.Validation("key is required")
	}
	k := Key(name)
	if _, ok := vocabulary[k]; !ok {
		return "", message.Validation("unknown key %q", name)
	}
	return k, nil
}

// Keys returns the vocabulary in sorted order.
func Keys() []Key {
	out := make([]Key, 0, len(vocabulary))
	for k := range vocabulary {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
