// Package textutil provides filename sanitization for map names, which come
// straight from untrusted script comments.
package textutil
