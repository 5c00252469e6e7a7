//go:build rp2040 || rp2350

package main

import (
	"errors"
	"net"
	"time"

	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"

	"lightorchestra-go/types"
)

const wifiConnectTimeout = 30 * time.Second

// listen joins the configured WiFi network and opens the API listener. The
// Pico 2W's CYW43439 is driven through the board's netlink stack, which also
// backs the stdlib net package on device.
func listen(cfg types.NetConfig, addr string) (net.Listener, error) {
	if cfg.SSID == "" {
		return nil, errors.New("no SSID configured")
	}

	link, _ := probe.Probe()
	err := link.NetConnect(&netlink.ConnectParams{
		Ssid:           cfg.SSID,
		Passphrase:     cfg.Passphrase,
		ConnectTimeout: wifiConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	println("[main] wifi up, ssid:", cfg.SSID)

	return net.Listen("tcp", addr)
}
