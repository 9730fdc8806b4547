package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Address is a named mailbox address.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attachment describes a file attached to an email. URL is the retrieval reference.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Email is a message in the inbox. Read is the only field this system mutates.
type Email struct {
	ID             string       `gorm:"primaryKey" json:"id"`
	From           Address      `gorm:"embedded;embeddedPrefix:from_" json:"from"`
	To             []Address    `gorm:"serializer:json" json:"to"`
	Cc             []Address    `gorm:"serializer:json" json:"cc,omitempty"`
	Subject        string       `json:"subject"`
	Body           string       `gorm:"type:text" json:"body"`
	Summary        string       `gorm:"type:text" json:"summary,omitempty"`
	Date           time.Time    `gorm:"index" json:"date"`
	Read           bool         `gorm:"default:false" json:"read"`
	Important      bool         `gorm:"default:false" json:"important"`
	HasAttachments bool         `gorm:"default:false" json:"hasAttachments"`
	Attachments    []Attachment `gorm:"serializer:json" json:"attachments,omitempty"`
	Labels         []string     `gorm:"serializer:json" json:"labels,omitempty"`
}

// Normalize keeps HasAttachments consistent with Attachments.
func (e *Email) Normalize() {
	e.HasAttachments = len(e.Attachments) > 0
}

// BeforeSave enforces the attachment invariant on every write.
func (e *Email) BeforeSave(tx *gorm.DB) error {
	e.Normalize()
	return nil
}

// Matches reports whether query occurs, case-insensitively, in the subject,
// body, sender name or sender address. The empty query matches every email.
func (e Email) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{e.Subject, e.Body, e.From.Name, e.From.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
