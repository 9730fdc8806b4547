package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"mailtriage/internal/model"
)

const (
	labelUnread    = "UNREAD"
	labelImportant = "IMPORTANT"
	labelStarred   = "STARRED"
)

// ToEmail converts a message fetched with format "full".
func ToEmail(msg *gmail.Message) model.Email {
	email := model.Email{
		ID:     msg.Id,
		Date:   time.UnixMilli(msg.InternalDate).UTC(),
		Read:   true,
		Labels: msg.LabelIds,
	}
	for _, l := range msg.LabelIds {
		switch l {
		case labelUnread:
			email.Read = false
		case labelImportant, labelStarred:
			email.Important = true
		}
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "subject":
				email.Subject = h.Value
			case "from":
				if addrs := parseAddresses(h.Value); len(addrs) > 0 {
					email.From = addrs[0]
				}
			case "to":
				email.To = parseAddresses(h.Value)
			case "cc":
				email.Cc = parseAddresses(h.Value)
			}
		}
		email.Body = plainTextBody(msg.Payload)
		email.Attachments = attachments(msg.Id, msg.Payload)
	}
	if strings.TrimSpace(email.Body) == "" {
		email.Body = msg.Snippet
	}
	email.Normalize()
	return email
}

// parseAddresses accepts RFC 5322 lists and falls back to the raw value.
func parseAddresses(raw string) []model.Address {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	list, err := mail.ParseAddressList(raw)
	if err != nil {
		return []model.Address{{Email: raw}}
	}
	out := make([]model.Address, 0, len(list))
	for _, a := range list {
		out = append(out, model.Address{Name: a.Name, Email: a.Address})
	}
	return out
}

func plainTextBody(part *gmail.MessagePart) string {
	if strings.EqualFold(part.MimeType, "text/plain") && part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		if data, err := decodeBody(part.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, p := range part.Parts {
		if body := plainTextBody(p); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(data string) ([]byte, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return base64.RawURLEncoding.DecodeString(data)
	}
	return b, nil
}

func attachments(msgID string, part *gmail.MessagePart) []model.Attachment {
	var out []model.Attachment
	var walk func(p *gmail.MessagePart)
	walk = func(p *gmail.MessagePart) {
		if p.Filename != "" {
			a := model.Attachment{Name: p.Filename, Type: p.MimeType}
			if p.Body != nil {
				a.ID = p.Body.AttachmentId
				a.Size = p.Body.Size
			}
			if a.ID == "" {
				a.ID = p.PartId
			}
			a.URL = "gmail://" + msgID + "/" + a.ID
			out = append(out, a)
		}
		for _, c := range p.Parts {
			walk(c)
		}
	}
	walk(part)
	return out
}
