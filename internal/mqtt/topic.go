package mqtt

import (
	"fmt"
	"strings"
)

// ResponsePrefix is the root of every response topic.
const ResponsePrefix = "_response"

// Join joins topic levels with "/", skipping empty parts.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// ResponseTopic returns the topic a reply to requestTopic is published on.
func ResponseTopic(requestTopic string) string {
	return ResponsePrefix + "/" + requestTopic
}

// LastLevel returns the trailing level of topic.
func LastLevel(topic string) string {
	if i := strings.LastIndexByte(topic, '/'); i >= 0 {
		return topic[i+1:]
	}
	return topic
}

// ValidateTopic checks a topic name used for publishing.
func ValidateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcard in publish topic %q", ErrInvalidTopic, topic)
	}
	return nil
}

// ValidatePattern checks a subscription filter. Wildcards must occupy a
// whole level and "#" may only be the last level.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidTopic)
	}
	levels := strings.Split(pattern, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return fmt.Errorf("%w: '#' must be the last level in %q", ErrInvalidTopic, pattern)
			}
		case level == "+":
		case strings.ContainsAny(level, "+#"):
			return fmt.Errorf("%w: wildcard must occupy a whole level in %q", ErrInvalidTopic, pattern)
		}
	}
	return nil
}

// Match reports whether topic matches the subscription pattern using MQTT
// wildcard rules: "+" matches exactly one level, "#" matches the remaining
// levels including none.
func Match(pattern, topic string) bool {
	p := strings.Split(pattern, "/")
	t := strings.Split(topic, "/")
	for i, level := range p {
		if level == "#" {
			return true
		}
		if i >= len(t) {
			return false
		}
		if level != "+" && level != t[i] {
			return false
		}
	}
	return len(p) == len(t)
}
