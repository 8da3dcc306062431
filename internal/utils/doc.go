// Package utils holds low-level helpers shared by the providers: JSON-over-HTTP
// round trips with status classification ([DoPostSync], [DoGetSync]) and
// string helpers used when logging payloads.
package utils
