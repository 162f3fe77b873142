package scan

import "fmt"

// OnFailure is the caller-side policy for a non-zero scanner exit. The
// invoker itself never applies it.
type OnFailure string

const (
	// OnFailureFail fails the job when the scanner exits non-zero.
	OnFailureFail OnFailure = "fail"
	// OnFailureWarn reports the non-zero exit but keeps the job green.
	OnFailureWarn OnFailure = "warn"
)

// Valid reports whether the policy is a known value.
func (o OnFailure) Valid() bool {
	return o == OnFailureFail || o == OnFailureWarn
}

// Verdict is the pass/fail decision for one scanner run.
type Verdict struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// Evaluate applies the on-failure policy to a finished capture. A missing
// report URL alone never fails the gate; only the exit code matters.
func Evaluate(capt *Capture, policy OnFailure) Verdict {
	if capt.ExitCode == 0 {
		return Verdict{Passed: true, Reason: "scanner exited 0"}
	}
	if policy == OnFailureWarn {
		return Verdict{
			Passed: true,
			Reason: fmt.Sprintf("scanner exited %d (warn mode)", capt.ExitCode),
		}
	}
	return Verdict{
		Passed: false,
		Reason: fmt.Sprintf("scanner exited %d", capt.ExitCode),
	}
}
