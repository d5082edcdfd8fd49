package advisor

// FailureKind classifies why an agent invocation degraded.
type FailureKind string

const (
	// FailureNone means the invocation produced a real model answer.
	FailureNone FailureKind = ""

	// FailureInvocation means a keyed call failed for a substantive reason.
	FailureInvocation FailureKind = "invocation_error"

	// FailureModelParameter means every parameter shape was rejected and
	// the bare fallback call failed too.
	FailureModelParameter FailureKind = "model_parameter_error"
)

// Outcome is the result of one agent invocation. The pipeline never aborts
// on failure: a degraded outcome carries human-readable failure text that
// flows downstream exactly like a real answer, and the Degraded flag lets
// callers detect it without matching on the text.
type Outcome struct {
	Text     string
	Degraded bool
	Kind     FailureKind
}

// Success wraps real model output.
func Success(text string) Outcome {
	return Outcome{Text: text}
}

// Failed wraps failure text with its classification.
func Failed(text string, kind FailureKind) Outcome {
	return Outcome{Text: text, Degraded: true, Kind: kind}
}
