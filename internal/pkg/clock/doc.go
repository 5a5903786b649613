// Package clock supplies the current time behind the Clocker interface.
// Code computing TOTP steps or login timestamps takes a Clocker so tests can
// pin time with Fixed.
package clock
