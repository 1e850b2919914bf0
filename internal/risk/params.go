package risk

import "fmt"

// InvalidParamsError reports out-of-domain risk parameters. It is
// returned before any metric is computed.
type InvalidParamsError struct {
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return "invalid risk parameters: " + e.Reason
}

func errParams(format string, args ...any) error {
	return &InvalidParamsError{Reason: fmt.Sprintf(format, args...)}
}

// Params are the two user-tunable inputs of a recomputation. They are
// immutable for the duration of one Compute call.
type Params struct {
	// Confidence is the VaR/ES confidence level in percent. The valid
	// domain is (50, 100) exclusive; anything else would put the
	// quantile on the wrong side of the distribution or outside it.
	Confidence float64 `json:"confidence"`
	// Window is the rolling volatility window in observations.
	Window int `json:"window"`
}

// Validate checks the parameter domains against the number of
// available return rows.
func (p Params) Validate(returnRows int) error {
	if p.Confidence <= 50 || p.Confidence >= 100 {
		return errParams("confidence level must be in (50, 100), got %g", p.Confidence)
	}
	if p.Window < 2 {
		return errParams("window size must be at least 2, got %d", p.Window)
	}
	if p.Window >= returnRows {
		return errParams("window size %d needs more than %d return rows", p.Window, returnRows)
	}
	return nil
}
