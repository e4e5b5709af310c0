// internal/app/system/mailer/templates_test.go
package mailer

import (
	"strings"
	"testing"
)

func TestBuildResetEmail(t *testing.T) {
	email := BuildResetEmail(ResetEmailData{
		SiteName:  "MemberHub",
		ResetLink: "https://memberhub.example.com/reset/abc123",
		ExpiresIn: "1 hour",
	})

	if !strings.Contains(email.Subject, "MemberHub") {
		t.Errorf("subject missing site name: %q", email.Subject)
	}
	if !strings.Contains(email.TextBody, "https://memberhub.example.com/reset/abc123") {
		t.Error("text body missing reset link")
	}
	if !strings.Contains(email.HTMLBody, "https://memberhub.example.com/reset/abc123") {
		t.Error("html body missing reset link")
	}
	if !strings.Contains(email.TextBody, "1 hour") {
		t.Error("text body missing expiry")
	}
}

func TestBuildResetEmail_EscapesLink(t *testing.T) {
	email := BuildResetEmail(ResetEmailData{
		SiteName:  "MemberHub",
		ResetLink: `https://example.com/reset/a"><script>`,
		ExpiresIn: "1 hour",
	})
	if strings.Contains(email.HTMLBody, "<script>") {
		t.Error("html body did not escape link")
	}
}
