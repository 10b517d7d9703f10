package services

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/yungbote/worldkernel-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
	"github.com/yungbote/worldkernel-backend/internal/pkg/logger"
)

const (
	PathHome      = "/"
	PathNewKernel = "/kernel/new"
	PathLogin     = "/auth/login"
	PathSignup    = "/auth/signup"
)

var (
	forkPagePattern = regexp.MustCompile(`^/kernel/[^/]+/fork$`)
	editPagePattern = regexp.MustCompile(`^/kernel/[^/]+/edit$`)
)

type NavLink struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Primary bool   `json:"primary"`
	// Action is set for links that are not plain navigation, e.g. "logout".
	Action string `json:"action,omitempty"`
}

type NavState struct {
	LoggedIn bool      `json:"logged_in"`
	Username string    `json:"username,omitempty"`
	Links    []NavLink `json:"links"`
	// Redirect is set when the requested page must not be shown to this caller.
	Redirect string `json:"redirect,omitempty"`
}

type NavigationService interface {
	State(ctx context.Context, rd *ctxutil.RequestData, path string) (*NavState, error)
	// Gate returns a redirect target when path is not viewable by rd, else "".
	Gate(rd *ctxutil.RequestData, path string) string
}

type navigationService struct {
	log       *logger.Logger
	profiles  ProfileService
	loginPath string
}

func NewNavigationService(log *logger.Logger, profiles ProfileService, loginPath string) NavigationService {
	if loginPath == "" {
		loginPath = PathLogin
	}
	return &navigationService{
		log:       log.With("service", "NavigationService"),
		profiles:  profiles,
		loginPath: loginPath,
	}
}

func IsProtectedPage(path string) bool {
	return strings.HasPrefix(path, PathNewKernel) || forkPagePattern.MatchString(path) || editPagePattern.MatchString(path)
}

// LoginRedirect builds "<login>?redirect=<path>".
func LoginRedirect(loginPath, path string) string {
	return loginPath + "?" + url.Values{"redirect": []string{path}}.Encode()
}

func (ns *navigationService) Gate(rd *ctxutil.RequestData, path string) string {
	if !rd.Authenticated() {
		if IsProtectedPage(path) {
			return LoginRedirect(ns.loginPath, path)
		}
		return ""
	}
	if path == ns.loginPath || path == PathSignup {
		return PathHome
	}
	return ""
}

func (ns *navigationService) State(ctx context.Context, rd *ctxutil.RequestData, path string) (*NavState, error) {
	if path == "" {
		path = PathHome
	}
	st := &NavState{Redirect: ns.Gate(rd, path)}

	if rd.Authenticated() {
		p, err := ns.profiles.GetByID(ctx, rd.UserID)
		switch {
		case err == nil:
			st.LoggedIn = true
			st.Username = p.Username
			if path != PathNewKernel {
				st.Links = append(st.Links, NavLink{Label: "New Kernel", Href: PathNewKernel, Primary: true})
			}
			st.Links = append(st.Links,
				NavLink{Label: "@" + p.Username, Href: "/profile/" + url.PathEscape(p.Username)},
				NavLink{Label: "Logout", Href: PathHome, Action: "logout"},
			)
			return st, nil
		case errors.Is(err, pkgerrors.ErrNotFound):
			// Identity without a profile row renders as logged out.
			ns.log.Warn("Authenticated caller has no profile", "user_id", rd.UserID)
		default:
			return nil, err
		}
	}

	st.Links = []NavLink{
		{Label: "Log In", Href: ns.loginPath},
		{Label: "Sign Up", Href: PathSignup, Primary: true},
	}
	return st, nil
}
