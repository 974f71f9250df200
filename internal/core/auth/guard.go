package auth

import (
	"net/url"
	"strings"
)

// DecisionKind is what the route guard tells the router to do.
type DecisionKind int

const (
	// RenderPlaceholder shows a neutral "checking session" view; no redirect yet.
	RenderPlaceholder DecisionKind = iota
	// RedirectToLogin sends the user to the login entry point.
	RedirectToLogin
	// RenderProtected lets the protected content through.
	RenderProtected
)

func (k DecisionKind) String() string {
	switch k {
	case RenderPlaceholder:
		return "placeholder"
	case RedirectToLogin:
		return "redirect"
	case RenderProtected:
		return "protected"
	default:
		return "invalid"
	}
}

// Decision is the guard outcome. From is the originally requested location,
// set only for RedirectToLogin.
type Decision struct {
	Kind DecisionKind
	From string
}

// Decide maps an auth state to a render target for the requested location.
// Loading wins over everything so a session still being checked never
// flashes a redirect.
func Decide(s State, requested string) Decision {
	switch {
	case s.IsLoading:
		return Decision{Kind: RenderPlaceholder}
	case !s.IsAuthenticated:
		return Decision{Kind: RedirectToLogin, From: SafeReturnPath(requested)}
	default:
		return Decision{Kind: RenderProtected}
	}
}

// LoginURL builds the login entry point URL that carries the return location.
func LoginURL(loginPath, from string) string {
	from = SafeReturnPath(from)
	if from == "/" {
		return loginPath
	}
	return loginPath + "?from=" + url.QueryEscape(from)
}

// SafeReturnPath keeps only same-origin absolute paths; anything else
// (empty, relative, scheme-qualified or protocol-relative) becomes "/".
func SafeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return p
}
