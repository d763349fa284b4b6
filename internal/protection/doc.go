// Package protection detects maps whose archives were deliberately obfuscated
// by map protection tools.
//
// Protectors strip or blank the MPQ (listfile) so editors cannot enumerate the
// archive. An archive without a usable listfile is reported as protected.
package protection
