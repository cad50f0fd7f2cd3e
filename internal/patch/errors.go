package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the patch engine. Callers classify failures with
// errors.Is; the wrapped messages carry the detail.
var (
	// ErrMalformedHunk indicates the patch body could not be split into
	// well-formed hunks (missing @@ header, illegal line prefix).
	ErrMalformedHunk = errors.New("malformed hunk")

	// ErrNoMatch indicates no tier produced a candidate position for a hunk.
	ErrNoMatch = errors.New("no match for hunk")

	// ErrAmbiguousMatch indicates a tier produced candidates that tie on
	// every tiebreaker.
	ErrAmbiguousMatch = errors.New("ambiguous match for hunk")

	// ErrApplyFailed indicates the completed diff was rejected by the
	// applicator. The completer guarantees byte-exact context, so this is
	// a hard error rather than a recoverable condition.
	ErrApplyFailed = errors.New("apply failed")
)

func malformedHunkErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedHunk, fmt.Sprintf(format, args...))
}

func noMatchErr(anchor []HunkLine, origin int) error {
	payloads := make([]string, 0, len(anchor))
	for _, hl := range anchor {
		if hl.Tag != TagAdd {
			payloads = append(payloads, hl.Payload)
		}
	}
	return fmt.Errorf("%w (search origin line %d)\ncontext lines:\n%s",
		ErrNoMatch, origin+1, strings.Join(payloads, "\n"))
}

func ambiguousErr(p1, p2 int) error {
	return fmt.Errorf("%w: candidates at lines %d and %d tie on exactness and proximity",
		ErrAmbiguousMatch, p1+1, p2+1)
}

func applyFailedErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrApplyFailed, fmt.Sprintf(format, args...))
}
