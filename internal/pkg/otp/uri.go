package otp

import (
	"net/url"
	"strings"
)

// BuildURI formats the otpauth enrollment URI for secret, label and issuer:
//
//	otpauth://totp/{issuer}:{label}?secret={secret}&issuer={issuer}
//
// Issuer and label are percent-encoded; the secret is already URI safe.
func BuildURI(secret Secret, label, issuer string) string {
	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(escape(issuer))
	b.WriteByte(':')
	b.WriteString(escape(label))
	b.WriteString("?secret=")
	b.WriteString(EncodeSecret(secret))
	b.WriteString("&issuer=")
	b.WriteString(escape(issuer))

	return b.String()
}

// escape leaves only RFC 3986 unreserved characters untouched.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
