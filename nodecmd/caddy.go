// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nodecmd

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/ava-labs/l1-toolbox/utils/validation"
)

var ErrInvalidDomain = errors.New("invalid domain")

var caddyfileTemplate = template.Must(template.New("Caddyfile").Parse(`{{.Domain}} {
	reverse_proxy 127.0.0.1:{{.Port}}
}
`))

// Caddyfile returns the config of a Caddy server terminating TLS for
// [domain] in front of the node API on [port].
func Caddyfile(domain string, port uint16) (string, error) {
	if !validation.IsValidDomain(domain) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}
	if port == 0 {
		port = DefaultHTTPPort
	}

	var b strings.Builder
	err := caddyfileTemplate.Execute(&b, struct {
		Domain string
		Port   uint16
	}{
		Domain: domain,
		Port:   port,
	})
	return b.String(), err
}

// CaddyRunCommand starts Caddy with the Caddyfile written to [dir].
func CaddyRunCommand(dir string) string {
	if len(dir) == 0 {
		dir = "~/caddy"
	}
	return strings.Join([]string{
		"docker run -d",
		"--name caddy",
		"--network host",
		fmt.Sprintf("-v %s/Caddyfile:/etc/caddy/Caddyfile", dir),
		fmt.Sprintf("-v %s/data:/data", dir),
		fmt.Sprintf("-v %s/config:/config", dir),
		"caddy:2.8-alpine",
	}, lineSeparator)
}
