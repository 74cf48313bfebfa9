package protocol

import (
	"github.com/kyson-dev/sing-deploy/internal/cfgerr"
)

// Selection 用户的协议选择，进入任何编译器之前必须先通过 Validate
type Selection struct {
	Transport Transport `json:"transport"`
	Security  Security  `json:"security"`
	Flow      string    `json:"flow,omitempty"`
	CertMode  CertMode  `json:"cert_mode,omitempty"`
}

// Validate 校验 Selection 自身的组合
func (s Selection) Validate() error {
	return Validate(s.Transport, s.Security, s.Flow)
}

// Validate checks a (transport, security, flow) triple against the fixed compatibility table.
// Reality only runs over raw TCP, and the vision flow needs both TCP and Reality.
func Validate(transport Transport, security Security, flow string) error {
	if !transport.valid() {
		return cfgerr.Unsupported("transport", string(transport))
	}
	if !security.valid() {
		return cfgerr.Unsupported("security", string(security))
	}

	if security == SecurityReality && transport != TransportTCP {
		return cfgerr.New(cfgerr.IncompatibleCombination, "transport",
			"reality security requires tcp transport, got %s", transport)
	}

	switch flow {
	case "":
	case VisionFlow:
		if transport != TransportTCP || security != SecurityReality {
			return cfgerr.New(cfgerr.IncompatibleCombination, "flow",
				"flow %s requires tcp transport with reality security, got %s+%s", flow, transport, security)
		}
	default:
		return cfgerr.Unsupported("flow", flow)
	}

	return nil
}
