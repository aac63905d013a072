package notify

import (
	"bytes"
	"text/template"

	"github.com/yuin/goldmark"
)

// Template is a markdown body with text/template placeholders. Rendering
// produces the markdown as the plain part and goldmark's HTML as the
// alternative part. Raw HTML in the data is dropped by goldmark.
type Template struct {
	Subject string
	body    *template.Template
}

func mustTemplate(name, subject, body string) Template {
	return Template{Subject: subject, body: template.Must(template.New(name).Parse(body))}
}

var (
	OTPMail = mustTemplate("otp", "Your LibZone verification code", `# Verify your email

Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Your LibZone verification code is **{{.Code}}**.

It expires in {{.Minutes}} minutes. If you did not ask for it, ignore this email.
`)

	WelcomeMail = mustTemplate("welcome", "Welcome to LibZone", `# Welcome, {{.Name}}!

Your LibZone account is ready. Browse the catalog, borrow up to one copy of each
title at a time and read it online while the loan is active.

Loans run for **{{.LoanDays}} days**.
`)
)

func (t Template) Render(to string, data any) (Message, error) {
	var md bytes.Buffer
	if err := t.body.Execute(&md, data); err != nil {
		return Message{}, err
	}
	var html bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &html); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: t.Subject, Text: md.String(), HTML: html.String()}, nil
}
