package settings

import (
	"fmt"
	"strings"

	"github.com/kyson-dev/sing-deploy/internal/keys"
	"github.com/kyson-dev/sing-deploy/internal/protocol"
)

// FillSecrets 为缺失的凭据生成随机值，返回被填写的字段列表。已有的值不会被覆盖。
func (f *File) FillSecrets() ([]string, error) {
	var filled []string

	if len(f.Users) == 0 {
		f.Users = []User{{Name: "default"}}
	}

	needUUID, needPassword := false, false
	for _, p := range f.Protocols {
		if strings.EqualFold(p.Transport, string(protocol.TransportQUIC)) {
			needPassword = true
		} else {
			needUUID = true
		}
	}

	for i := range f.Users {
		u := &f.Users[i]
		if needUUID && u.UUID == "" {
			u.UUID = keys.NewUUID()
			filled = append(filled, fmt.Sprintf("users[%d].uuid", i))
		}
		if needPassword && u.Password == "" {
			pw, err := keys.NewPassword()
			if err != nil {
				return filled, err
			}
			u.Password = pw
			filled = append(filled, fmt.Sprintf("users[%d].password", i))
		}
	}

	for i := range f.Protocols {
		p := &f.Protocols[i]
		if !strings.EqualFold(p.Security, string(protocol.SecurityReality)) {
			continue
		}
		if p.Reality == nil {
			p.Reality = &Reality{}
		}
		r := p.Reality
		if r.PrivateKey == "" {
			pair, err := keys.NewRealityKeyPair()
			if err != nil {
				return filled, err
			}
			r.PrivateKey = pair.PrivateKey
			r.PublicKey = pair.PublicKey
			filled = append(filled, fmt.Sprintf("protocols[%d].reality.private_key", i))
		} else if r.PublicKey == "" {
			pub, err := keys.PublicKeyOf(r.PrivateKey)
			if err != nil {
				return filled, err
			}
			r.PublicKey = pub
		}
		if len(r.ShortIDs) == 0 {
			sid, err := keys.NewShortID()
			if err != nil {
				return filled, err
			}
			r.ShortIDs = []string{sid}
			filled = append(filled, fmt.Sprintf("protocols[%d].reality.short_ids", i))
		}
	}
	return filled, nil
}
