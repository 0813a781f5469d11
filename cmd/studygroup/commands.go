package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/studygroup-client/apiclient"
	"github.com/jrsteele09/studygroup-client/internal/app"
	"github.com/jrsteele09/studygroup-client/models"
)

type command struct {
	help string
	run  func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"register":     {"create an account and log in", registerCmd},
	"login":        {"log in with username and password", loginCmd},
	"logout":       {"forget stored credentials", logoutCmd},
	"whoami":       {"show the logged in user", whoamiCmd},
	"profile":      {"show or update the profile (-set key=value)", profileCmd},
	"groups":       {"list groups: explore | joined | admin", groupsCmd},
	"group-create": {"create a group", groupCreateCmd},
	"join":         {"join a group by id", joinCmd},
	"leave":        {"leave a group by id", leaveCmd},
	"sessions":     {"sessions: list | get <id> | create | delete <id>", sessionsCmd},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func registerCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.Auth.Register(ctx, *username, *email, *password)
	if err != nil {
		return errors.New(apiclient.Message(err))
	}
	fmt.Fprintf(out, "Registered and logged in as %s\n", result.User.Username)
	return nil
}

func loginCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.Auth.Login(ctx, *username, *password)
	if err != nil {
		return errors.New(apiclient.Message(err))
	}
	fmt.Fprintf(out, "Logged in as %s\n", result.User.Username)
	return nil
}

func logoutCmd(ctx context.Context, a *app.App, _ []string, out io.Writer) error {
	if err := a.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out")
	return nil
}

func whoamiCmd(_ context.Context, a *app.App, _ []string, out io.Writer) error {
	authState := a.State.Snapshot().Auth
	if !authState.IsAuthenticated {
		fmt.Fprintln(out, "Not logged in")
		return nil
	}
	if authState.User != nil {
		fmt.Fprintf(out, "%s <%s>\n", authState.User.Username, authState.User.Email)
	}
	if expiry, ok := apiclient.TokenExpiry(authState.AccessToken); ok {
		fmt.Fprintf(out, "Access token expires %s\n", expiry.Local().Format(time.RFC1123))
	}
	return nil
}

// keyValues collects repeated -set key=value flags.
type keyValues models.Profile

func (kv keyValues) String() string {
	return fmt.Sprint(map[string]any(kv))
}

func (kv keyValues) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	kv[key] = value
	return nil
}

func profileCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	updates := keyValues{}
	fs.Var(updates, "set", "profile field to update as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		profile models.Profile
		err     error
	)
	if len(updates) > 0 {
		profile, err = a.Auth.UpdateProfile(ctx, models.Profile(updates))
	} else {
		profile, err = a.Auth.FetchProfile(ctx)
	}
	if err != nil {
		return errors.New(apiclient.Message(err))
	}

	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, profile[k])
	}
	return tw.Flush()
}

func groupsCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	which := "explore"
	if len(args) > 0 {
		which = args[0]
	}

	var (
		list []models.Group
		err  error
	)
	switch which {
	case "explore":
		list, err = a.Groups.FetchExplore(ctx)
	case "joined":
		list, err = a.Groups.FetchJoined(ctx)
	case "admin":
		list, err = a.Groups.FetchAdmin(ctx)
	default:
		return fmt.Errorf("unknown group list %q (explore, joined, admin)", which)
	}
	if err != nil {
		return errors.New(apiclient.Message(err))
	}
	printGroups(out, list)
	return nil
}

func printGroups(out io.Writer, list []models.Group) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No groups")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tOWNER\tDESCRIPTION")
	for _, g := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", g.ID, g.Name, g.Participants, g.Owner, g.Description)
	}
	_ = tw.Flush()
}

func groupCreateCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("group-create", flag.ContinueOnError)
	var in models.NewGroup
	fs.StringVar(&in.Name, "name", "", "group name")
	fs.StringVar(&in.Description, "description", "", "group description")
	fs.StringVar(&in.Color, "color", "", "display colour")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := a.Groups.Create(ctx, in)
	if err != nil {
		return errors.New(apiclient.Message(err))
	}
	fmt.Fprintf(out, "Created group %d (%s)\n", g.ID, g.Name)
	return nil
}

func joinCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.Groups.Join(ctx, id); err != nil {
		return errors.New(apiclient.Message(err))
	}
	fmt.Fprintf(out, "Joined group %d\n", id)
	return nil
}

func leaveCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := a.Groups.Leave(ctx, id); err != nil {
		return errors.New(apiclient.Message(err))
	}
	fmt.Fprintf(out, "Left group %d\n", id)
	return nil
}

func sessionsCmd(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		fs := flag.NewFlagSet("sessions list", flag.ContinueOnError)
		var filter models.SessionFilter
		fs.Int64Var(&filter.GroupID, "group", 0, "only sessions of this group")
		fs.StringVar(&filter.Date, "date", "", "only sessions on this date (YYYY-MM-DD)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		list, err := a.Sessions.List(ctx, filter)
		if err != nil {
			return errors.New(apiclient.Message(err))
		}
		printSessions(out, list)
	case "get":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		s, err := a.Sessions.Get(ctx, id)
		if err != nil {
			return errors.New(apiclient.Message(err))
		}
		printSessions(out, []models.Session{*s})
	case "create":
		fs := flag.NewFlagSet("sessions create", flag.ContinueOnError)
		var in models.NewSession
		fs.Int64Var(&in.GroupID, "group", 0, "group id")
		fs.StringVar(&in.Title, "title", "", "session title")
		fs.StringVar(&in.Description, "description", "", "session description")
		fs.StringVar(&in.Date, "date", "", "date (YYYY-MM-DD)")
		fs.StringVar(&in.Time, "time", "", "time (HH:MM)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		s, err := a.Sessions.Create(ctx, in)
		if err != nil {
			return errors.New(apiclient.Message(err))
		}
		fmt.Fprintf(out, "Created session %d (%s)\n", s.ID, s.Title)
	case "delete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := a.Sessions.Delete(ctx, id); err != nil {
			return errors.New(apiclient.Message(err))
		}
		fmt.Fprintf(out, "Deleted session %d\n", id)
	default:
		return fmt.Errorf("unknown sessions command %q (list, get, create, delete)", sub)
	}
	return nil
}

func printSessions(out io.Writer, list []models.Session) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No sessions")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGROUP\tDATE\tTIME\tTITLE\tCREATED BY")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n", s.ID, s.GroupID, s.Date, s.Time, s.Title, s.CreatedBy)
	}
	_ = tw.Flush()
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
