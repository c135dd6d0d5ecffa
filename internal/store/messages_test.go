package store

import (
	"context"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestMessages(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := mustUser(t, database, "owner@example.com", model.RoleOwner)
	staff := mustUser(t, database, "desk@example.com", model.RoleStaff)
	tag := mustTag(t, database, owner.ID, "MSG0000000001", "Scarf")

	about, err := CreateMessage(ctx, database, &model.Message{
		FromUserID: staff.ID,
		ToUserID:   owner.ID,
		TagID:      tag.ID,
		Subject:    "Your scarf",
		Body:       "We have it at the front desk.",
		EmailSent:  true,
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if about.EmailSent {
		t.Error("new messages must start with email_sent unset")
	}

	general, err := CreateMessage(ctx, database, &model.Message{
		FromUserID: staff.ID,
		ToUserID:   owner.ID,
		Subject:    "Hello",
		Body:       "Opening hours changed.",
	})
	if err != nil {
		t.Fatalf("CreateMessage without tag: %v", err)
	}

	inbox, err := ListInbox(ctx, database, owner.ID, ListOptions{})
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(inbox))
	}
	if inbox[0].ID != general.ID {
		t.Error("expected newest message first")
	}
	if inbox[1].ItemName != "Scarf" {
		t.Errorf("expected item name 'Scarf', got %q", inbox[1].ItemName)
	}
	if inbox[0].ItemName != "" || inbox[0].TagID != "" {
		t.Errorf("expected no item on general message, got %+v", inbox[0])
	}
	if inbox[0].FromFirstName != "Ana" {
		t.Errorf("expected sender first name, got %q", inbox[0].FromFirstName)
	}

	sent, _ := ListInbox(ctx, database, staff.ID, ListOptions{})
	if len(sent) != 0 {
		t.Errorf("expected empty inbox for sender, got %d", len(sent))
	}

	limited, _ := ListInbox(ctx, database, owner.ID, ListOptions{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1 message with limit, got %d", len(limited))
	}

	if err := MarkMessageEmailSent(ctx, database, about.ID); err != nil {
		t.Fatalf("MarkMessageEmailSent: %v", err)
	}
	inbox, err = ListInbox(ctx, database, owner.ID, ListOptions{})
	if err != nil {
		t.Fatalf("ListInbox: %v", err)
	}
	for _, m := range inbox {
		if m.EmailSent != (m.ID == about.ID) {
			t.Errorf("message %s: email_sent = %v", m.Subject, m.EmailSent)
		}
		if m.ID == about.ID && m.Body != "We have it at the front desk." {
			t.Errorf("unexpected body %q", m.Body)
		}
	}

	if err := MarkMessageEmailSent(ctx, database, "nope"); err != nil {
		t.Errorf("marking a missing message should be a no-op, got %v", err)
	}
}
