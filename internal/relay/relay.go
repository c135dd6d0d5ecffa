// Package relay stores messages between users and forwards a copy by
// email when asked.
package relay

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/mailer"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// SubjectPrefix is prepended to the subject of every email copy.
const SubjectPrefix = "Lost & Found: "

// Relay persists messages and sends email copies through Sender.
type Relay struct {
	DB     *db.DB
	Sender mailer.Sender
}

// SendInput describes one message.
type SendInput struct {
	FromUserID string
	ToUserID   string
	TagID      string
	Subject    string
	Body       string
	EmailCopy  bool
}

// Send stores the message and, if requested, emails a copy to the
// recipient. Mail failures are logged and never returned; the stored
// message keeps EmailSent false in that case.
func (r *Relay) Send(ctx context.Context, in SendInput) (*model.Message, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, model.Invalid("subject required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, model.Invalid("message required")
	}
	if in.FromUserID == "" || in.ToUserID == "" {
		return nil, model.Invalid("sender and recipient required")
	}

	from, err := store.GetUser(ctx, r.DB, in.FromUserID)
	if err != nil {
		return nil, err
	}
	if from == nil {
		return nil, fmt.Errorf("sender: %w", model.ErrNotFound)
	}
	to, err := store.GetUser(ctx, r.DB, in.ToUserID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("recipient: %w", model.ErrNotFound)
	}
	if in.TagID != "" {
		tag, err := store.GetTag(ctx, r.DB, in.TagID)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, fmt.Errorf("tag: %w", model.ErrNotFound)
		}
	}

	msg, err := store.CreateMessage(ctx, r.DB, &model.Message{
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		TagID:      in.TagID,
		Subject:    in.Subject,
		Body:       in.Body,
	})
	if err != nil {
		return nil, err
	}

	if in.EmailCopy {
		r.forward(ctx, msg, to.Email)
	}
	return msg, nil
}

func (r *Relay) forward(ctx context.Context, msg *model.Message, address string) {
	sender := r.Sender
	if sender == nil {
		sender = mailer.Disabled{}
	}

	err := sender.Send(ctx, mailer.Message{
		To:      address,
		Subject: SubjectPrefix + msg.Subject,
		HTML:    "<p>" + html.EscapeString(msg.Body) + "</p>",
	})
	if err != nil {
		slog.Error("failed to send email copy", "message", msg.ID, "to", address, "error", err)
		return
	}

	// The copy is already delivered; record it even if the caller went away.
	if err := store.MarkMessageEmailSent(context.WithoutCancel(ctx), r.DB, msg.ID); err != nil {
		slog.Error("failed to mark email sent", "message", msg.ID, "error", err)
		return
	}
	msg.EmailSent = true
	slog.Info("email copy sent", "message", msg.ID)
}

// Inbox returns messages addressed to userID, newest first.
func (r *Relay) Inbox(ctx context.Context, userID string) ([]model.Message, error) {
	return store.ListInbox(ctx, r.DB, userID, store.ListOptions{})
}
