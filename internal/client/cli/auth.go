package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errNotLoggedIn = errors.New("not logged in, use 'login' or 'signup'")

func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Signup(ctx, name, email, string(password))
	if err != nil {
		return err
	}
	a.startSession(ctx, u)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.startSession(ctx, u)
	return nil
}

// Logout tells the server and forgets the local session even when the
// server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	err := a.api.Logout(ctx)
	a.endSession(ctx)
	if err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	u, err := a.api.Check(ctx)
	if err != nil {
		return err
	}
	a.printf("%s <%s> id=%s\n", u.FullName, u.Email, u.ID)
	if u.ProfilePic != "" {
		a.printf("avatar: %s\n", u.ProfilePic)
	}
	return nil
}
