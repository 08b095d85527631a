package portal

import "fmt"

// Tab is a view of the login prompt.
type Tab string

const (
	TabLogin             Tab = "login"
	TabSignup            Tab = "signup"
	TabForgot            Tab = "forgot"
	TabEmailVerification Tab = "emailVerification"
)

// Headline is the title and subtitle shown beside a tab.
type Headline struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabLogin, TabSignup, TabForgot, TabEmailVerification:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// HeadlineFor returns the copy for a tab. The verification notice is only
// reached from sign-up and keeps its headline.
func HeadlineFor(t Tab) Headline {
	switch t {
	case TabForgot:
		return Headline{
			Title:    "Password Recovery",
			Subtitle: "Forgot your password? No worries! We'll send you a secure reset link via email.",
		}
	case TabSignup, TabEmailVerification:
		return Headline{
			Title:    "Join Our Community",
			Subtitle: "Create your account to unlock exclusive content and connect with other developers.",
		}
	default:
		return Headline{
			Title:    "Exclusive Access Awaits",
			Subtitle: "Discover my latest projects, insights, and creative processes.",
		}
	}
}
