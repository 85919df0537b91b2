package handlers

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// PrincipalHeader carries the authenticated caller's UPN. It is set by the
// fronting gateway after validating the caller's token.
const PrincipalHeader = "X-User-Principal"

// PrincipalInput is embedded by operations acting on the caller's behalf.
type PrincipalInput struct {
	Principal string `header:"X-User-Principal" doc:"Caller UPN or email, set by the auth gateway"`
}

func (p PrincipalInput) principal() (string, error) {
	upn := strings.TrimSpace(p.Principal)
	if upn == "" {
		return "", huma.Error401Unauthorized("missing caller identity header " + PrincipalHeader)
	}
	return upn, nil
}
