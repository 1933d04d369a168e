package remote

// State classifies the outcome of fetching one path.
type State int

const (
	// StateOK means the path was fetched (or served from cache); Content
	// holds the file content, which may legitimately be empty.
	StateOK State = iota
	// StateNotFound means the remote host was reachable but the path does
	// not exist (or is not readable).
	StateNotFound
	// StateTransportError means the fetch never got a definitive answer:
	// connection failure, timeout, or a malformed transfer.
	StateTransportError
)

// Result is the per-path outcome of a fetch. It keeps "empty file" and
// "fetch failed" distinguishable; callers that want the legacy
// empty-string-on-failure contract use Text.
type Result struct {
	State   State
	Content string
	Err     error // set for StateTransportError
}

// OK reports whether the fetch produced content.
func (r Result) OK() bool { return r.State == StateOK }

// Text returns the content for a successful fetch and "" otherwise.
func (r Result) Text() string {
	if r.State == StateOK {
		return r.Content
	}
	return ""
}

func okResult(content string) Result { return Result{State: StateOK, Content: content} }

func notFoundResult() Result { return Result{State: StateNotFound} }

func transportResult(err error) Result { return Result{State: StateTransportError, Err: err} }

// classifyFailure maps a runner error to a Result: ssh transport failures
// (exit 255, timeouts) become StateTransportError, anything else is the
// remote command reporting a missing or unreadable path.
func classifyFailure(err error) Result {
	if IsTransportError(err) {
		return transportResult(err)
	}
	return notFoundResult()
}
