package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

// ApplyProxyConfig makes c.IP() read PROXY_HEADER for requests arriving
// from one of TRUSTED_PROXIES (comma separated addresses or CIDR ranges).
// Without trusted proxies the socket address is used and forwarding
// headers are ignored.
func ApplyProxyConfig(cfg *fiber.Config) {
	var proxies []string
	for _, p := range strings.Split(env.GetEnv("TRUSTED_PROXIES", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return
	}

	cfg.EnableTrustedProxyCheck = true
	cfg.TrustedProxies = proxies
	cfg.ProxyHeader = env.GetEnv("PROXY_HEADER", fiber.HeaderXForwardedFor)
	cfg.EnableIPValidation = true
	log.Infof("[Router] Trusting %s from %d proxies", cfg.ProxyHeader, len(proxies))
}
