package mailer

import "html/template"

type templateData struct {
	AppName  string
	FullName string
	Username string
	Link     string
	Expiry   string
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify your email address</h2>
  <p>Hello {{.FullName}},</p>
  <p>Thanks for signing up to {{.AppName}}. Please confirm your email address by clicking the button below:</p>
  <div style="margin: 30px 0; text-align: center;">
    <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 20px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
  </div>
  <p>This link expires in {{.Expiry}}. If you did not create an account you can ignore this email.</p>
  <p>Best regards,<br>The {{.AppName}} Team</p>
</div>`))

	resetTmpl = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password reset request</h2>
  <p>Hello {{.FullName}},</p>
  <p>We received a request to reset your password. Click the button below to choose a new one:</p>
  <div style="margin: 30px 0; text-align: center;">
    <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 20px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
  </div>
  <p>This link expires in {{.Expiry}}. If you didn't request a reset, ignore this email; your password stays the same.</p>
  <p>Best regards,<br>The {{.AppName}} Team</p>
</div>`))

	testTmpl = template.Must(template.New("test").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{.AppName}} test email</h2>
  <p>Your SMTP configuration works.</p>
</div>`))
)
