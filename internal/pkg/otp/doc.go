// Package otp implements time-based one-time passwords (RFC 6238) for the
// service: secret generation and text encoding, code computation and
// verification, and the otpauth:// provisioning URI consumed by
// authenticator apps.
//
// Secrets travel as unpadded base32 text. Codes are always six decimal
// digits and are accepted only for the time step that contains "now"; no
// look-back or look-ahead window is applied.
package otp
