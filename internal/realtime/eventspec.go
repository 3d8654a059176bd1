package realtime

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

const eventsSpecEnv = "HAVEN_EVENTS_YAML"

//go:embed events.yaml
var eventsSpecFS embed.FS

// fallback catalog used when YAML is missing or invalid
var fallbackEvents = map[SSEEvent]bool{
	SSEEventMessageCreated:       true,
	SSEEventConversationRestored: true,
	SSEEventInvitationReceived:   true,
	SSEEventAlertStarted:         true,
	SSEEventAlertStopped:         true,
}

type yamlEventCatalog struct {
	Catalog string          `yaml:"catalog"`
	Version int             `yaml:"version"`
	Events  []yamlEventSpec `yaml:"events"`
}

type yamlEventSpec struct {
	Name    string `yaml:"name"`
	Enabled *bool  `yaml:"enabled"`
}

var catalogOnce sync.Once
var catalogCache map[SSEEvent]bool
var catalogErr error

func currentEventCatalog(log *logger.Logger) map[SSEEvent]bool {
	catalogOnce.Do(func() {
		catalogCache, catalogErr = loadEventCatalog()
	})
	if catalogErr != nil {
		if log != nil {
			log.Warn("realtime: event catalog load failed; using fallback", "error", catalogErr)
		}
		return fallbackEvents
	}
	return catalogCache
}

// EventEnabled reports whether the notifier should emit the given event
// kind. Unknown kinds are disabled so stale emitters go quiet instead of
// leaking unreviewed payloads to clients.
func EventEnabled(log *logger.Logger, ev SSEEvent) bool {
	return currentEventCatalog(log)[ev]
}

func loadEventCatalog() (map[SSEEvent]bool, error) {
	data, err := readEventsSpec()
	if err != nil {
		return nil, err
	}
	return parseEventCatalog(data)
}

func readEventsSpec() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(eventsSpecEnv)); path != "" {
		return os.ReadFile(path)
	}
	return eventsSpecFS.ReadFile("events.yaml")
}

func parseEventCatalog(data []byte) (map[SSEEvent]bool, error) {
	var spec yamlEventCatalog
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Catalog) != "haven_events" {
		return nil, fmt.Errorf("unexpected catalog: %s", spec.Catalog)
	}
	if len(spec.Events) == 0 {
		return nil, errors.New("no events defined")
	}

	out := make(map[SSEEvent]bool, len(spec.Events))
	for _, ev := range spec.Events {
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			return nil, errors.New("event name is required")
		}
		if _, exists := out[SSEEvent(name)]; exists {
			return nil, fmt.Errorf("duplicate event name: %s", name)
		}
		enabled := true
		if ev.Enabled != nil {
			enabled = *ev.Enabled
		}
		out[SSEEvent(name)] = enabled
	}
	return out, nil
}
