package mfa

// Purpose identifies what an encrypted value is used for.
type Purpose string

// PurposeOTPSeed scopes encryption to OTP seeds.
const PurposeOTPSeed Purpose = "otp_seed"

// Scope binds a ciphertext to its owner and purpose. It is used as AAD
// (Additional Authenticated Data) in AES-GCM, so a ciphertext copied onto
// another user's row fails to decrypt.
type Scope struct {
	Username string
	Purpose  Purpose
}

// OTPSeed returns the scope for username's OTP seed.
func OTPSeed(username string) Scope {
	return Scope{Username: username, Purpose: PurposeOTPSeed}
}
