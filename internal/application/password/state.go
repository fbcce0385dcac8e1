package password

// State is a step of the password change flow.
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateSubmitting    State = "submitting"
	StateRemoteSuccess State = "remote_success"
	StateRemoteFailure State = "remote_failure"
	StateReauthPending State = "reauth_pending"
	StateReauthDone    State = "reauth_done"
	StateTornDown      State = "torn_down"
	StateTerminal      State = "terminal"
)

// Event is what observers see on every transition.
// Err is set on the failing transition; Reauthenticated is meaningful from StateReauthDone on.
type Event struct {
	State           State
	MemberNumber    string
	Err             error
	Reauthenticated bool
}

// Observer receives flow events. It must not block.
type Observer func(Event)

type Option func(*runOptions)

type runOptions struct {
	observers []Observer
	onSuccess func(Outcome)
}

// WithObserver adds an observer for this run only.
func WithObserver(o Observer) Option {
	return func(r *runOptions) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// OnSuccess runs fn once the whole flow completed successfully.
func OnSuccess(fn func(Outcome)) Option {
	return func(r *runOptions) { r.onSuccess = fn }
}

type tracker struct {
	member    string
	observers []Observer
	trail     []State
}

func (t *tracker) emit(s State, err error, reauthed bool) {
	t.trail = append(t.trail, s)
	ev := Event{State: s, MemberNumber: t.member, Err: err, Reauthenticated: reauthed}
	for _, o := range t.observers {
		o(ev)
	}
}
