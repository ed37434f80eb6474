package workflow

import "fmt"

// Phase is a step of the creation workflow.
type Phase int

const (
	PhaseSelectingKey Phase = iota
	PhaseKeyConfirmed
	PhaseGenerating
	PhaseReady
	PhaseError
)

var phaseNames = map[Phase]string{
	PhaseSelectingKey: "selecting_key",
	PhaseKeyConfirmed: "key_confirmed",
	PhaseGenerating:   "generating",
	PhaseReady:        "ready",
	PhaseError:        "error",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}

	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText renders the phase by name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Progression is a generated chord progression. Empty text is valid.
type Progression struct {
	Text string `json:"text"`
}

// State is a point-in-time view of the workflow.
type State struct {
	Key         string       `json:"key,omitempty"`
	Style       string       `json:"style,omitempty"`
	Phase       Phase        `json:"phase"`
	Progression *Progression `json:"progression,omitempty"`
	Keywords    []string     `json:"keywords"`
	Seq         uint64       `json:"seq"`
	Err         string       `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Keywords = append(make([]string, 0, len(s.Keywords)), s.Keywords...)

	if s.Progression != nil {
		p := *s.Progression
		out.Progression = &p
	}

	return out
}
