package events

import (
	"strings"

	goccy "github.com/goccy/go-json"
)

// Format renders ev as its name followed by its JSON payload, for trace
// output. Events without fields render as the name alone.
func Format(ev Event) string {
	data, err := goccy.Marshal(ev)
	if err != nil {
		return string(ev.Name()) + " <" + err.Error() + ">"
	}
	payload := string(data)
	if payload == "{}" || payload == "null" {
		return string(ev.Name())
	}
	return string(ev.Name()) + " " + payload
}

// IsUI reports whether name is a front-end request.
func IsUI(name Name) bool { return strings.HasPrefix(string(name), "ui:") }

// IsApp reports whether name is an application-layer report.
func IsApp(name Name) bool { return strings.HasPrefix(string(name), "app:") }
