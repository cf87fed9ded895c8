package alerts

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2/log"
)

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color:#f4f4f7;padding:24px 0;">
    <tr><td align="center">
      <table width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;overflow:hidden;">
        <tr><td style="background-color:#4f46e5;padding:20px 32px;">
          <span style="color:#ffffff;font-size:22px;font-weight:bold;">SubMate</span>
        </td></tr>
        <tr><td style="padding:32px;">
          <h2 style="margin:0 0 16px;color:#111827;font-size:20px;">{{.Title}}</h2>
          <p style="margin:0;color:#4b5563;font-size:15px;line-height:1.6;">{{.Message}}</p>
        </td></tr>
        <tr><td style="padding:20px 32px;border-top:1px solid #e5e7eb;">
          <p style="margin:0;color:#9ca3af;font-size:12px;">You are receiving this email because you have a SubMate account.</p>
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

type emailData struct {
	Title   string
	Message template.HTML
}

// renderEmail produces the branded HTML body for a notification. The message
// may carry inline markup (e.g. <strong> around amounts).
func renderEmail(title, message string) string {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, emailData{Title: title, Message: template.HTML(message)}); err != nil {
		log.Errorf("[Alerts] Failed to render email template: %v", err)
		return message
	}
	return buf.String()
}
