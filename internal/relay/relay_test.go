package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/mailer"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
	// afterSend runs once the message is accepted.
	afterSend func()
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	if f.afterSend != nil {
		f.afterSend()
	}
	return nil
}

// stored reads message id back from userID's inbox.
func stored(t *testing.T, database *db.DB, userID, id string) *model.Message {
	t.Helper()
	inbox, err := store.ListInbox(context.Background(), database, userID, store.ListOptions{})
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	for i := range inbox {
		if inbox[i].ID == id {
			return &inbox[i]
		}
	}
	t.Fatalf("message %s not in inbox", id)
	return nil
}

func setup(t *testing.T) (*db.DB, *model.User, *model.User, *model.Tag) {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner, err := store.CreateUser(ctx, database, &model.User{
		Email: "owner@example.com", PasswordHash: "x", FirstName: "Ana", LastName: "Novak",
		Phone: "1", EmergencyContactName: "M", EmergencyContactPhone: "2", Role: model.RoleOwner,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	staff, err := store.CreateUser(ctx, database, &model.User{
		Email: "desk@example.com", PasswordHash: "x", FirstName: "Jan", LastName: "Kos",
		Phone: "3", EmergencyContactName: "M", EmergencyContactPhone: "4", Role: model.RoleStaff,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	tag, err := store.CreateTag(ctx, database, owner.ID, "RELAY00000001", "Wallet", "")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	return database, owner, staff, tag
}

func TestSendWithEmailCopy(t *testing.T) {
	database, owner, staff, tag := setup(t)
	ctx := context.Background()
	sender := &fakeSender{}
	r := &Relay{DB: database, Sender: sender}

	msg, err := r.Send(ctx, SendInput{
		FromUserID: staff.ID,
		ToUserID:   owner.ID,
		TagID:      tag.ID,
		Subject:    "Wallet found",
		Body:       "Come pick it up <today>",
		EmailCopy:  true,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !msg.EmailSent {
		t.Error("expected EmailSent after successful delivery")
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	mail := sender.sent[0]
	if mail.To != "owner@example.com" {
		t.Errorf("expected recipient owner@example.com, got %q", mail.To)
	}
	if mail.Subject != "Lost & Found: Wallet found" {
		t.Errorf("unexpected subject %q", mail.Subject)
	}
	if mail.HTML != "<p>Come pick it up &lt;today&gt;</p>" {
		t.Errorf("expected escaped body, got %q", mail.HTML)
	}

	if !stored(t, database, owner.ID, msg.ID).EmailSent {
		t.Error("expected email_sent persisted")
	}
}

func TestSendRecordsDeliveryAfterCallerCancels(t *testing.T) {
	database, owner, staff, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &Relay{DB: database, Sender: &fakeSender{afterSend: cancel}}

	msg, err := r.Send(ctx, SendInput{
		FromUserID: staff.ID, ToUserID: owner.ID,
		Subject: "Hello", Body: "Body", EmailCopy: true,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !msg.EmailSent {
		t.Error("expected EmailSent after delivery")
	}
	if !stored(t, database, owner.ID, msg.ID).EmailSent {
		t.Error("expected email_sent persisted after the request context was cancelled")
	}
}

func TestSendMailFailureIsSwallowed(t *testing.T) {
	database, owner, staff, _ := setup(t)
	ctx := context.Background()
	r := &Relay{DB: database, Sender: &fakeSender{err: errors.New("connection refused")}}

	msg, err := r.Send(ctx, SendInput{
		FromUserID: staff.ID, ToUserID: owner.ID,
		Subject: "Hello", Body: "Body", EmailCopy: true,
	})
	if err != nil {
		t.Fatalf("expected mail failure to be swallowed, got %v", err)
	}
	if msg.EmailSent {
		t.Error("expected EmailSent false after failed delivery")
	}
	if got := stored(t, database, owner.ID, msg.ID); got.EmailSent {
		t.Errorf("expected stored message with email_sent unset, got %+v", got)
	}
}

func TestSendDisabledTransport(t *testing.T) {
	database, owner, staff, _ := setup(t)
	r := &Relay{DB: database}

	msg, err := r.Send(context.Background(), SendInput{
		FromUserID: staff.ID, ToUserID: owner.ID,
		Subject: "Hello", Body: "Body", EmailCopy: true,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.EmailSent {
		t.Error("expected EmailSent false without a transport")
	}
}

func TestSendWithoutCopy(t *testing.T) {
	database, owner, staff, _ := setup(t)
	sender := &fakeSender{}
	r := &Relay{DB: database, Sender: sender}

	if _, err := r.Send(context.Background(), SendInput{
		FromUserID: staff.ID, ToUserID: owner.ID, Subject: "Hi", Body: "There",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("expected no email when no copy requested")
	}
}

func TestSendValidation(t *testing.T) {
	database, owner, staff, _ := setup(t)
	ctx := context.Background()
	r := &Relay{DB: database, Sender: &fakeSender{}}

	if _, err := r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: owner.ID, Body: "x"}); !model.IsValidation(err) {
		t.Errorf("missing subject: expected validation error, got %v", err)
	}
	if _, err := r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: owner.ID, Subject: "x", Body: " "}); !model.IsValidation(err) {
		t.Errorf("blank body: expected validation error, got %v", err)
	}
	if _, err := r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: "missing", Subject: "x", Body: "y"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown recipient: expected ErrNotFound, got %v", err)
	}
	if _, err := r.Send(ctx, SendInput{FromUserID: "missing", ToUserID: owner.ID, Subject: "x", Body: "y"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown sender: expected ErrNotFound, got %v", err)
	}
	if _, err := r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: owner.ID, TagID: "missing", Subject: "x", Body: "y"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown tag: expected ErrNotFound, got %v", err)
	}
}

func TestInbox(t *testing.T) {
	database, owner, staff, tag := setup(t)
	ctx := context.Background()
	r := &Relay{DB: database}

	r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: owner.ID, TagID: tag.ID, Subject: "First", Body: "1"})
	r.Send(ctx, SendInput{FromUserID: staff.ID, ToUserID: owner.ID, Subject: "Second", Body: "2"})

	inbox, err := r.Inbox(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(inbox))
	}
	if inbox[0].Subject != "Second" {
		t.Errorf("expected newest first, got %q", inbox[0].Subject)
	}
	if inbox[1].ItemName != "Wallet" || inbox[1].FromFirstName != "Jan" {
		t.Errorf("expected joined fields, got %+v", inbox[1])
	}
}
