package main

import (
	"chat-inbox/domain"
	"chat-inbox/errors"
	"chat-inbox/session"
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type app struct {
	session *session.Session
	out     io.Writer
	limit   *int
}

func newApp(s *session.Session, out io.Writer, limit *int) *app {
	return &app{session: s, out: out, limit: limit}
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"inbox":    {"inbox [-group Work]", (*app).inbox},
	"open":     {"open -conv ID", (*app).open},
	"send":     {"send -conv ID -text TEXT [-as USER_ID]", (*app).send},
	"history":  {"history -conv ID", (*app).history},
	"edit":     {"edit -msg ID -text TEXT", (*app).edit},
	"rm-msg":   {"rm-msg -msg ID", (*app).removeMessage},
	"rm-conv":  {"rm-conv -conv ID", (*app).removeConversation},
	"new":      {"new -with ID[,ID...] [-name NAME] [-label Work]", (*app).newConversation},
	"users":    {"users [-q QUERY]", (*app).users},
	"whoami":   {"whoami", (*app).whoami},
	"signin":   {"signin -email EMAIL", (*app).signIn},
	"register": {"register -email EMAIL", (*app).register},
	"signout":  {"signout", (*app).signOut},
	"profile":  {"profile [-name NAME] [-photo REF]", (*app).profile},
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"inbox"}
	}
	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *app) usage() {
	fmt.Fprintln(a.out, "Usage: inbox <command> [flags]")
	names := lo.Keys(commands)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintln(a.out, "  "+commands[name].usage)
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(a.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func heading(s string) string {
	return color.New(color.BgBlack, color.FgGreen).Render(s)
}

func highlight(s string) string {
	return color.New(color.FgYellow, color.OpBold).Render(s)
}

func limit[T any](items []T, n *int) []T {
	if n == nil || *n < 0 {
		return items
	}
	return lo.Slice(items, 0, *n)
}

// title is what the inbox shows for a conversation: the group name, or the other participant.
func (a *app) title(c domain.Conversation) string {
	if c.IsGroup && c.Name != nil {
		return *c.Name
	}
	me, _ := a.session.CurrentUser()
	other, ok := c.Counterpart(me.ID)
	if !ok {
		return c.ID
	}
	if user, ok := a.session.User(other); ok {
		return user.DisplayName
	}
	return other
}

func (a *app) inbox(_ context.Context, args []string) error {
	fs := a.flags("inbox")
	group := fs.String("group", "", "only show one inbox label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	conversations := a.session.Conversations()
	if *group != "" {
		conversations = a.session.ConversationsByGroup(domain.ParseGroup(*group))
	}

	fmt.Fprintln(a.out, heading(fmt.Sprintf("  ====== Inbox (%d) ======", len(conversations))))
	table := a.table("ID", "Title", "Group", "Unread", "Last message", "Updated")
	for _, c := range limit(conversations, a.limit) {
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Content
		}
		unread := strconv.Itoa(c.UnreadCount)
		if c.UnreadCount > 0 {
			unread = highlight(unread)
		}
		table.Append([]string{c.ID, a.title(c), string(c.Group), unread, last, c.UpdatedAt.Local().Format(time.DateTime)})
	}
	table.Render()
	return nil
}

func (a *app) open(ctx context.Context, args []string) error {
	fs := a.flags("open")
	conversationID := fs.String("conv", "", "conversation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.session.SetCurrentConversation(ctx, *conversationID) {
		return fmt.Errorf("conversation %s: %w", *conversationID, errors.ErrNotFound)
	}
	return a.printHistory(*conversationID)
}

func (a *app) history(_ context.Context, args []string) error {
	fs := a.flags("history")
	conversationID := fs.String("conv", "", "conversation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, ok := a.session.Conversation(*conversationID); !ok {
		return fmt.Errorf("conversation %s: %w", *conversationID, errors.ErrNotFound)
	}
	return a.printHistory(*conversationID)
}

func (a *app) printHistory(conversationID string) error {
	conversation, _ := a.session.Conversation(conversationID)
	fmt.Fprintln(a.out, heading("  ====== "+a.title(conversation)+" ======"))
	table := a.table("ID", "From", "To", "Message", "Status", "At")
	for _, m := range a.session.MessagesFor(conversationID) {
		table.Append([]string{m.ID, m.SenderName, m.RecipientName, m.Content, string(m.Status), m.CreatedAt.Local().Format(time.DateTime)})
	}
	table.Render()
	return nil
}

func (a *app) send(ctx context.Context, args []string) error {
	fs := a.flags("send")
	conversationID := fs.String("conv", "", "conversation id")
	text := fs.String("text", "", "message text")
	as := fs.String("as", "", "sender id, defaults to the signed in user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	senderID := *as
	if senderID == "" {
		me, ok := a.session.CurrentUser()
		if !ok {
			return errors.ErrNoCurrentUser
		}
		senderID = me.ID
	}
	message, err := a.session.Send(ctx, *conversationID, *text, senderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent %s to %s\n", message.ID, message.RecipientName)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	messageID := fs.String("msg", "", "message id")
	text := fs.String("text", "", "new text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	edited, err := a.session.EditMessage(ctx, *messageID, *text)
	if err != nil {
		return err
	}
	if !edited {
		fmt.Fprintf(a.out, "No message %s\n", *messageID)
		return nil
	}
	fmt.Fprintf(a.out, "Edited %s\n", *messageID)
	return nil
}

func (a *app) removeMessage(ctx context.Context, args []string) error {
	fs := a.flags("rm-msg")
	messageID := fs.String("msg", "", "message id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.session.DeleteMessage(ctx, *messageID) {
		fmt.Fprintf(a.out, "No message %s\n", *messageID)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %s\n", *messageID)
	return nil
}

func (a *app) removeConversation(ctx context.Context, args []string) error {
	fs := a.flags("rm-conv")
	conversationID := fs.String("conv", "", "conversation id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !a.session.DeleteConversation(ctx, *conversationID) {
		fmt.Fprintf(a.out, "No conversation %s\n", *conversationID)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %s\n", *conversationID)
	return nil
}

func (a *app) newConversation(ctx context.Context, args []string) error {
	fs := a.flags("new")
	with := fs.String("with", "", "comma separated user ids")
	name := fs.String("name", "", "group name, makes it a group")
	label := fs.String("label", "", "inbox label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := lo.Compact(lo.Map(strings.Split(*with, ","), func(id string, _ int) string {
		return strings.TrimSpace(id)
	}))
	cmd := domain.CreateConversationCommand{
		ParticipantIDs: ids,
		IsGroup:        *name != "" || len(ids) > 1,
		Group:          domain.Group(*label),
	}
	if *name != "" {
		cmd.Name = lo.ToPtr(*name)
	}
	id, err := a.session.CreateConversation(ctx, cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Conversation %s\n", id)
	return nil
}

func (a *app) users(ctx context.Context, args []string) error {
	fs := a.flags("users")
	query := fs.String("q", "", "name or email fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	users, err := a.session.SearchUsers(ctx, *query)
	if err != nil {
		return err
	}
	table := a.table("ID", "Name", "Email", "Initials")
	for _, u := range limit(users, a.limit) {
		table.Append([]string{u.ID, u.DisplayName, u.Email, u.Initials()})
	}
	table.Render()
	return nil
}

func (a *app) whoami(_ context.Context, _ []string) error {
	me, ok := a.session.CurrentUser()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	a.printUser(me)
	return nil
}

func (a *app) printUser(u domain.User) {
	fmt.Fprintf(a.out, "%s %s <%s>\n", highlight(u.Initials()), u.DisplayName, u.Email)
	if u.PhotoRef != nil {
		fmt.Fprintf(a.out, "photo: %s\n", *u.PhotoRef)
	}
}

func (a *app) signIn(ctx context.Context, args []string) error {
	fs := a.flags("signin")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.session.SignIn(ctx, *email)
	if err != nil {
		return err
	}
	a.printUser(user)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.session.Register(ctx, *email)
	if err != nil {
		return err
	}
	a.printUser(user)
	return nil
}

func (a *app) signOut(ctx context.Context, _ []string) error {
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := a.flags("profile")
	var update domain.ProfileUpdate
	fs.Func("name", "display name", func(v string) error {
		update.DisplayName = lo.ToPtr(v)
		return nil
	})
	fs.Func("photo", "photo reference, empty clears it", func(v string) error {
		update.PhotoRef = lo.ToPtr(v)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}
	user, err := a.session.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	a.printUser(user)
	return nil
}
