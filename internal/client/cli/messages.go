package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

const defaultInboxSize = 20

func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		a.println("No other users yet")
		return nil
	}
	for _, u := range users {
		mark := " "
		if a.isOnline(u.ID) {
			mark = "*"
		}
		a.printf("%s %s  %-20s %s\n", mark, u.ID, u.FullName, u.Email)
	}
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: history <userID>")
	}
	msgs, err := a.api.Conversation(ctx, args[0])
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.println("No messages yet")
		return nil
	}
	for _, m := range msgs {
		who := "them"
		if m.SenderID == a.session.UserID {
			who = "me"
		}
		a.printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.DateTime), who, describe(m))
	}
	return nil
}

func (a *App) Send(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) < 2 {
		return errors.New("usage: send <userID> <text>")
	}
	m, err := a.api.Send(ctx, args[0], strings.Join(args[1:], " "), "")
	if err != nil {
		return err
	}
	a.println("Sent", m.ID)
	return nil
}

func (a *App) SendImage(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 2 {
		return errors.New("usage: sendimg <userID> <path>")
	}
	img, err := EncodeImageFile(args[1])
	if err != nil {
		return err
	}
	m, err := a.api.Send(ctx, args[0], "", img)
	if err != nil {
		return err
	}
	a.println("Sent", m.ID, m.Image)
	return nil
}

func (a *App) Avatar(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: avatar <path>")
	}
	img, err := EncodeImageFile(args[0])
	if err != nil {
		return err
	}
	u, err := a.api.UpdateProfilePic(ctx, img)
	if err != nil {
		return err
	}
	a.println("Avatar updated:", u.ProfilePic)
	return nil
}

// Inbox prints messages that arrived over the socket, including ones from
// earlier runs.
func (a *App) Inbox(ctx context.Context, args []string) error {
	n := defaultInboxSize
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return errors.New("usage: inbox [n]")
		}
		n = v
	}

	msgs, err := a.store.Inbox.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.println("Inbox is empty")
		return nil
	}
	for _, m := range msgs {
		a.printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.DateTime), m.SenderID, describe(m))
	}
	return nil
}
