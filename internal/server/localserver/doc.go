// Package localserver serves the admin API on a Unix domain socket.
//
// The socket is created with mode 0600, so file system permissions decide
// who may use it. Requests arriving on the socket skip the network
// allowlist and the per-IP rate limiter of the TCP listener.
//
// A socket file left behind by a crashed process is removed on Listen.
// A socket that still accepts connections is reported as ErrSocketInUse.
package localserver
