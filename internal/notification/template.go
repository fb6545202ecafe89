package notification

import (
	"bytes"
	"html/template"
)

// emailTmpl is the HTML wrapper applied to every outgoing alert.
// {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:24px;background-color:#f4f4f5;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation">
    <tr>
      <td align="center">
        <table width="560" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:560px;width:100%;background-color:#ffffff;border-radius:8px;overflow:hidden;">
          <tr>
            <td style="background-color:#1c3a2a;padding:20px 32px;">
              <span style="font-size:18px;font-weight:700;color:#ffffff;">Hyttevakt</span>
              <span style="display:block;font-size:11px;color:#9ca3af;margin-top:2px;">
                Cabin availability watcher
              </span>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 32px;border-left:3px solid #2f855a;">
              <p style="margin:0;font-size:15px;font-weight:600;color:#1f2937;">{{.Subject}}</p>
            </td>
          </tr>
          <tr>
            <td style="padding:24px 32px;">
              <div style="font-size:14px;line-height:1.7;color:#374151;white-space:pre-line;">{{.Body}}</div>
            </td>
          </tr>
          <tr>
            <td style="padding:16px 32px;background-color:#f9fafb;">
              <p style="margin:0;font-size:11px;color:#9ca3af;">
                Sent by hyttevakt because cabin availability changed since the last check.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

// buildEmailHTML renders the HTML alternative for an outgoing message.
func buildEmailHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Subject string
		Body    string
	}{Subject: subject, Body: body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
