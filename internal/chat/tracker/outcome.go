package tracker

// Outcome classifies what Handle did with a frame.
type Outcome int

const (
	DroppedPort Outcome = iota
	DroppedShort
	Undecodable
	Control
	Ignored
	ServerNotice
	Unattributed
	Duplicate
	Emitted
	ReportFailed
)

var outcomeNames = [...]string{
	DroppedPort:  "dropped_port",
	DroppedShort: "dropped_short",
	Undecodable:  "undecodable",
	Control:      "control",
	Ignored:      "ignored",
	ServerNotice: "server_notice",
	Unattributed: "unattributed",
	Duplicate:    "duplicate",
	Emitted:      "emitted",
	ReportFailed: "report_failed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Outcomes lists every Outcome in order.
func Outcomes() []Outcome {
	out := make([]Outcome, len(outcomeNames))
	for i := range out {
		out[i] = Outcome(i)
	}
	return out
}
