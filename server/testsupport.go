package server

import "net"

// FindOpenPort binds to an OS-assigned port on localhost, closes the
// listener, and returns the port number, for tests that need to start a
// server against a known-free address. Grounded on the Python original's
// find_open_port test helper (httprpc/common.py).
func FindOpenPort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
