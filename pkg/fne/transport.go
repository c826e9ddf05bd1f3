package fne

import "net"

// udpTransport adapts a *net.UDPConn to heartbeat.Transport.
type udpTransport struct {
	conn *net.UDPConn
}

func (t udpTransport) WriteTo(data []byte, addr *net.UDPAddr) error {
	_, err := t.conn.WriteToUDP(data, addr)
	return err
}
