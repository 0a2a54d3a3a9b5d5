package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ReportEmailData describes a report lifecycle notification.
type ReportEmailData struct {
	RecipientName string
	Email         string
	ReportTitle   string
	ReportNumber  string
	CompanyName   string
	ReportURL     string
	PublishedAt   time.Time
	AppName       string
}

func (d ReportEmailData) appName() string {
	if d.AppName == "" {
		return "SBRP"
	}
	return d.AppName
}

func (d ReportEmailData) greeting() string {
	if strings.TrimSpace(d.RecipientName) == "" {
		return "there"
	}
	return d.RecipientName
}

// BuildReportPublishedEmail tells the report author that a report was published.
func BuildReportPublishedEmail(data ReportEmailData) Message {
	appName := data.appName()
	name := data.greeting()
	when := data.PublishedAt.UTC().Format("2 January 2006 15:04 MST")

	subject := fmt.Sprintf("[%s] Report %s published", appName, data.ReportNumber)

	textBody := fmt.Sprintf(`Hi %s,

The report "%s" (%s) for %s was published on %s.

%s

The %s Team`,
		name, data.ReportTitle, data.ReportNumber, data.CompanyName, when, linkLine(data.ReportURL), appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1e3a8a;">Hi %s,</h2>
    <p>The report <strong>%s</strong> (%s) for %s was published on %s.</p>
    %s
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The %s Team</p>
</body>
</html>`,
		html.EscapeString(name), html.EscapeString(data.ReportTitle), html.EscapeString(data.ReportNumber),
		html.EscapeString(data.CompanyName), when, linkButton(data.ReportURL), html.EscapeString(appName))

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

func linkLine(u string) string {
	if u == "" {
		return "The document will be attached to the case file."
	}
	return "Download the document: " + u
}

func linkButton(u string) string {
	if u == "" {
		return ""
	}
	return fmt.Sprintf(`<p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #1e3a8a; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Open Report</a>
    </p>`, html.EscapeString(u))
}
