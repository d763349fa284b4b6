// Package mpqarchive reads StarCraft II map archives (.s2ma), which are MPQ
// containers. The decoder handles the classic hash and block tables, an
// optional user data header, encrypted entries, and zlib or bzip2 compressed
// sectors. Imploded and patch entries are reported as unsupported.
//
// Reader opens an archive per call and closes it before returning. Script
// entries are decoded to UTF-8 text, honouring a UTF-8 or UTF-16 byte order mark
// when one is present.
package mpqarchive
