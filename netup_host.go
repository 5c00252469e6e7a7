//go:build !rp2040 && !rp2350

package main

import (
	"net"

	"lightorchestra-go/types"
)

// listen opens the API listener directly; on a host build the OS network
// stack is already up.
func listen(_ types.NetConfig, addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
