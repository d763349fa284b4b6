// Package bank finds the persistent player banks a StarCraft II map uses by
// scanning its generated galaxy script for BankLoad and BankExists calls.
//
// Extraction is best effort and never fails: scripts without bank calls, or
// with bank names computed at runtime, simply yield fewer records.
package bank
