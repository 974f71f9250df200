package auth

import "fmt"

// defaultFailureMessage is used when AuthFailed carries no message.
const defaultFailureMessage = "login failed"

// Reduce is the total, side-effect-free transition function. Every action is
// accepted from every state.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case BeginAuth:
		s.IsLoading = true
		s.Error = ""
	case AuthSucceeded:
		// A success without a user cannot be authenticated; keep the
		// isAuthenticated <=> user invariant by treating it as a logout.
		if a.User == nil {
			return Reduce(s, LoggedOut{})
		}
		s.IsAuthenticated = true
		s.IsLoading = false
		s.User = a.User.Clone()
		s.Error = ""
	case AuthFailed:
		msg := a.Message
		if msg == "" {
			msg = defaultFailureMessage
		}
		s.IsAuthenticated = false
		s.IsLoading = false
		s.User = nil
		s.Error = msg
	case LoggedOut:
		s.IsAuthenticated = false
		s.IsLoading = false
		s.User = nil
		s.Error = ""
	case ErrorCleared:
		s.Error = ""
	case LoadingSet:
		s.IsLoading = a.Loading
	default:
		panic(fmt.Sprintf("auth: unhandled action %T", a))
	}
	return s
}
