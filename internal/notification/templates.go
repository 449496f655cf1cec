package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

var (
	resetPasswordTmpl = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for {{.ValidFor}}.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>`))

	verifyEmailTmpl = template.Must(template.New("verify").Parse(`<p>Hello {{.Name}},</p>
<p>Please confirm your email address. The link below is valid for {{.ValidFor}}.</p>
<p><a href="{{.Link}}">Verify email</a></p>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Hello {{.Name}},</p>
<p>Welcome aboard! Your account is ready.</p>`))
)

// Templates renders email bodies whose links point at baseURL.
type Templates struct {
	baseURL string
}

// NewTemplates builds email templates for links rooted at baseURL.
func NewTemplates(baseURL string) *Templates {
	return &Templates{baseURL: baseURL}
}

type linkData struct {
	Name     string
	Link     string
	ValidFor string
}

// ResetPassword renders the password reset body.
func (t *Templates) ResetPassword(name, userID, token, validFor string) (string, error) {
	return render(resetPasswordTmpl, linkData{Name: displayName(name), Link: t.link("/reset-password", userID, token), ValidFor: validFor})
}

// VerifyEmail renders the email verification body.
func (t *Templates) VerifyEmail(name, userID, token, validFor string) (string, error) {
	return render(verifyEmailTmpl, linkData{Name: displayName(name), Link: t.link("/api/v1/auth/email/verify", userID, token), ValidFor: validFor})
}

// Welcome renders the welcome body.
func (t *Templates) Welcome(name string) (string, error) {
	return render(welcomeTmpl, linkData{Name: displayName(name)})
}

func (t *Templates) link(path, userID, token string) string {
	q := url.Values{}
	q.Set("user", userID)
	q.Set("token", token)
	return fmt.Sprintf("%s%s?%s", t.baseURL, path, q.Encode())
}

func render(tmpl *template.Template, data linkData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
