// Package tenant resolves per-hostname branding (issuer name and theme
// stylesheet) for the multi-tenant deployment.
//
// Configuration lives in an INI file:
//
//	[General]
//	issuer_default = OTP-Service Default
//	css_default    = /static/default.css
//
//	[Domains]
//	otp.acme.example = Acme|acme.css
//	otp.other.example = Other Corp
//
// A Domains entry applies only when the request host matches its key
// exactly. The file is parsed into an immutable Snapshot; Store swaps in a
// new Snapshot when the file changes so edits take effect without restart.
package tenant
