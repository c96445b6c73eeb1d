// Package mailer composes the outbound grievance email. The portal never
// sends on the student's behalf by default: it returns two equivalent
// compose links, one for local mail clients (mailto) and one for Gmail web
// compose, and the browser opens whichever suits the device. Direct SES
// delivery is an optional extra (see Sender).
package mailer

import (
	"net/url"
	"strings"
)

// Message is one outbound email composition.
type Message struct {
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
}

// MailtoURL renders the message as a mailto: link for local mail clients.
// Query values are percent-encoded with %20 for spaces (mail clients do not
// decode '+').
func MailtoURL(m Message) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(strings.Join(m.To, ","))
	b.WriteString("?subject=")
	b.WriteString(encode(m.Subject))
	if len(m.CC) > 0 {
		b.WriteString("&cc=")
		b.WriteString(strings.Join(m.CC, ","))
	}
	if len(m.BCC) > 0 {
		b.WriteString("&bcc=")
		b.WriteString(strings.Join(m.BCC, ","))
	}
	b.WriteString("&body=")
	b.WriteString(encode(m.Body))
	return b.String()
}

// GmailComposeURL renders the message as a Gmail web compose link carrying
// the same to/cc/bcc/subject/body as the mailto form.
func GmailComposeURL(m Message) string {
	var b strings.Builder
	b.WriteString("https://mail.google.com/mail/?view=cm&fs=1&to=")
	b.WriteString(strings.Join(m.To, ","))
	if len(m.CC) > 0 {
		b.WriteString("&cc=")
		b.WriteString(strings.Join(m.CC, ","))
	}
	if len(m.BCC) > 0 {
		b.WriteString("&bcc=")
		b.WriteString(strings.Join(m.BCC, ","))
	}
	b.WriteString("&su=")
	b.WriteString(encode(m.Subject))
	b.WriteString("&body=")
	b.WriteString(encode(m.Body))
	return b.String()
}

// encode percent-encodes a query value, using %20 rather than '+' for
// spaces. Addresses are left as-is ('@' and ',' are legal in query strings
// and mail clients expect them literal).
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
