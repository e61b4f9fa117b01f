package email

import (
	"fmt"

	"github.com/mediremind/api/internal/domain"
)

const codeTemplate = `<div style="max-width:600px;margin:0 auto;font-family:sans-serif">
<h2>Hi %s!</h2>
<p>%s</p>
<div style="background:#F3F4F6;border-radius:12px;padding:30px;text-align:center">
<p style="color:#6B7280;font-size:14px">Your verification code is:</p>
<div style="font-size:36px;font-weight:bold;letter-spacing:8px">%s</div>
<p style="color:#6B7280;font-size:14px">This code will expire in 15 minutes</p>
</div>
<p>%s</p>
</div>`

// VerificationEmail builds the subject and HTML body for a code
// delivery, keyed by the session purpose.
func VerificationEmail(purpose domain.Purpose, fullName, code string) (subject, body string) {
	if purpose == domain.PurposeLogin {
		subject = "MediRemind Login Verification Code"
		body = fmt.Sprintf(codeTemplate,
			fullName,
			"We received a login request for your account. To continue, enter the code below:",
			code,
			"If you didn't attempt to log in, ignore this email and consider changing your password.",
		)
		return subject, body
	}

	subject = "Verify Your MediRemind Account"
	body = fmt.Sprintf(codeTemplate,
		fullName,
		"Thanks for signing up with MediRemind. To complete your registration, verify your email address.",
		code,
		"If you didn't request this code, you can safely ignore this email.",
	)
	return subject, body
}
