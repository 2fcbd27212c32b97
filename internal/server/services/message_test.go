package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_TextOnly(t *testing.T) {
	f := newFixture(t)
	a := f.signup(t, "A", "a@x.com")
	b := f.signup(t, "B", "b@x.com")

	msg, err := f.messages.Send(context.Background(), a.User.ID, b.User.ID, " hi ", "")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "hi", msg.Text)
	assert.Empty(t, msg.Image)
	assert.Equal(t, 0, f.uploader.calls)
}

func TestSend_WithImage(t *testing.T) {
	f := newFixture(t)
	a := f.signup(t, "A", "a@x.com")
	b := f.signup(t, "B", "b@x.com")

	msg, err := f.messages.Send(context.Background(), a.User.ID, b.User.ID, "", "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/images/x.png", msg.Image)
	assert.Equal(t, 1, f.uploader.calls)
}

func TestSend_Rejects(t *testing.T) {
	f := newFixture(t)
	a := f.signup(t, "A", "a@x.com")
	b := f.signup(t, "B", "b@x.com")
	ctx := context.Background()

	_, err := f.messages.Send(ctx, a.User.ID, b.User.ID, "   ", "")
	requireMessage(t, err, common.ErrorValidation, "Message text or image is required")

	_, err = f.messages.Send(ctx, a.User.ID, "not-a-uuid", "hi", "")
	requireMessage(t, err, common.ErrorValidation, "Invalid user id")

	_, err = f.messages.Send(ctx, a.User.ID, "4b1c1b0e-0000-4000-8000-000000000000", "hi", "img")
	requireMessage(t, err, common.ErrorNotFound, "Receiver not found")
	assert.Equal(t, 0, f.uploader.calls)

	f.uploader.err = common.Validation("Invalid image data")
	_, err = f.messages.Send(ctx, a.User.ID, b.User.ID, "", "junk")
	requireMessage(t, err, common.ErrorValidation, "Invalid image data")

	msgs, _ := f.messages.Conversation(ctx, a.User.ID, b.User.ID)
	assert.Empty(t, msgs)
}

func TestConversation_OnlyThePair(t *testing.T) {
	f := newFixture(t)
	a := f.signup(t, "A", "a@x.com")
	b := f.signup(t, "B", "b@x.com")
	c := f.signup(t, "C", "c@x.com")
	ctx := context.Background()

	for _, m := range []struct{ from, to, text string }{
		{a.User.ID, b.User.ID, "1"},
		{a.User.ID, c.User.ID, "x"},
		{b.User.ID, a.User.ID, "2"},
		{c.User.ID, a.User.ID, "y"},
	} {
		_, err := f.messages.Send(ctx, m.from, m.to, m.text, "")
		require.NoError(t, err)
	}

	msgs, err := f.messages.Conversation(ctx, a.User.ID, b.User.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].Text)
	assert.Equal(t, "2", msgs[1].Text)

	_, err = f.messages.Conversation(ctx, a.User.ID, "nope")
	requireMessage(t, err, common.ErrorValidation, "Invalid user id")
}
