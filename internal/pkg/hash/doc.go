// Package hash provides helpers for hashing and verifying secrets.
//
// Passwords are stored only as adaptive hashes (bcrypt or argon2id) and
// checked by comparing user input against the stored hash. Adaptive picks the
// verifier from the stored hash itself so both formats can coexist in one
// users table.
package hash
