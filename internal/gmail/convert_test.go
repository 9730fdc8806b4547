package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"mailtriage/internal/model"
)

func b64(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

func TestToEmail(t *testing.T) {
	date := time.Date(2025, 4, 20, 10, 30, 0, 0, time.UTC)
	msg := &gmail.Message{
		Id:           "m1",
		InternalDate: date.UnixMilli(),
		LabelIds:     []string{"INBOX", "UNREAD", "IMPORTANT"},
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Quarterly Report"},
				{Name: "From", Value: "Alice Johnson <alice@example.com>"},
				{Name: "To", Value: "John Doe <john@example.com>, bob@example.com"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("Hi John,\nPlease review.")}},
						{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>Hi</p>")}},
					},
				},
				{
					PartId:   "2",
					MimeType: "application/pdf",
					Filename: "draft.pdf",
					Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1234},
				},
			},
		},
	}

	email := ToEmail(msg)
	assert.Equal(t, "m1", email.ID)
	assert.Equal(t, date, email.Date)
	assert.False(t, email.Read)
	assert.True(t, email.Important)
	assert.Equal(t, "Quarterly Report", email.Subject)
	assert.Equal(t, model.Address{Name: "Alice Johnson", Email: "alice@example.com"}, email.From)
	require.Len(t, email.To, 2)
	assert.Equal(t, "bob@example.com", email.To[1].Email)
	assert.Equal(t, "Hi John,\nPlease review.", email.Body)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "att-1", email.Attachments[0].ID)
	assert.Equal(t, int64(1234), email.Attachments[0].Size)
	assert.True(t, email.HasAttachments)
}

func TestToEmailFallbacks(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m2",
		Snippet:  "snippet text",
		LabelIds: []string{"INBOX"},
		Payload: &gmail.MessagePart{
			MimeType: "text/html",
			Headers:  []*gmail.MessagePartHeader{{Name: "from", Value: "not an address"}},
		},
	}

	email := ToEmail(msg)
	assert.True(t, email.Read)
	assert.False(t, email.Important)
	assert.Equal(t, "snippet text", email.Body)
	assert.Equal(t, "not an address", email.From.Email)
	assert.False(t, email.HasAttachments)
}
