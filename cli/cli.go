// Package cli is the operator-facing surface: one-shot subcommands for
// session management plus an interactive shell that walks the views.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"sge-console/core/gateway"
	"sge-console/core/localstore"
	"sge-console/core/permedit"
	"sge-console/core/rbac"
	"sge-console/core/session"
	"sge-console/core/state"
	"sge-console/core/utils"
	"sge-console/core/view"
)

type App struct {
	store   *state.Store
	session *session.Manager
	bundle  *gateway.Bundle
	editor  *permedit.Editor
	prefs   *localstore.PrefsStore
	policy  *rbac.Policy
	logger  *utils.Logger

	in  *bufio.Reader
	out io.Writer

	noticeMu      sync.Mutex
	lastNoticeSeq uint64
}

func New(store *state.Store, mgr *session.Manager, logger *utils.Logger) *App {
	return &App{
		store:   store,
		session: mgr,
		logger:  logger,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

// SetBundle and SetEditor finish wiring after the gateways exist; the
// app itself is the bundle's confirmer, so construction is two-phase.
func (a *App) SetBundle(b *gateway.Bundle) { a.bundle = b }

func (a *App) SetEditor(e *permedit.Editor) { a.editor = e }

// SetPrefs enables last-view persistence across console runs.
func (a *App) SetPrefs(p *localstore.PrefsStore) { a.prefs = p }

func (a *App) SetPolicy(p *rbac.Policy) { a.policy = p }

// hasPermission consults the live per-role grants; the backend still
// enforces every call, this only keeps the prompts honest.
func (a *App) hasPermission(perm rbac.Permission) bool {
	id := a.store.Identity()
	if id == nil || a.policy == nil {
		return false
	}
	return a.policy.Allowed(id.Role, perm)
}

// Confirm satisfies the gateway confirmer: destructive calls prompt on
// the terminal and anything but an explicit yes declines.
func (a *App) Confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [s/N] ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "s" || answer == "si" || answer == "sì"
}

func (a *App) Run(ctx context.Context, args []string) int {
	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUser := loginCmd.String("u", "", "username")
	loginPass := loginCmd.String("p", "", "password")

	if len(args) < 1 {
		fmt.Fprintln(a.out, "commands: login, logout, whoami, console")
		return 1
	}

	switch args[0] {
	case "login":
		_ = loginCmd.Parse(args[1:])
		if err := a.session.Login(ctx, *loginUser, *loginPass); err != nil {
			return 1
		}
		id := a.store.Identity()
		fmt.Fprintf(a.out, "sessione attiva: %s (%s)\n", id.Username, id.Role)
		return 0
	case "logout":
		a.session.Logout(ctx)
		fmt.Fprintln(a.out, "sessione chiusa")
		return 0
	case "whoami":
		id := a.store.Identity()
		if id == nil {
			fmt.Fprintln(a.out, "nessuna sessione attiva")
			return 1
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", id.Username, id.FullName, id.Role)
		return 0
	case "console":
		return a.shell(ctx)
	default:
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		return 1
	}
}

func (a *App) menu() string {
	views := view.Navigable(a.store.Identity())
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, string(v))
	}
	return strings.Join(names, ", ")
}
