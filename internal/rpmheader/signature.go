package rpmheader

import (
	"bytes"
	"fmt"

	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/sassoftware/go-rpmutils"
)

// Signature tags in order of preference: header-only signatures first,
// then the legacy header+payload ones.
var signatureTags = []int{
	rpmutils.SIG_RSA,
	rpmutils.SIG_DSA,
	rpmutils.SIG_PGP,
	rpmutils.SIG_GPG,
}

// signingKey returns the short (32 bit) hex id of the key that signed the
// package, or "" when there is no parseable signature. The signature itself
// is not checked.
func signingKey(hdr *rpmutils.RpmHeader) string {
	for _, tag := range signatureTags {
		if !hdr.HasTag(tag) {
			continue
		}
		blob, err := hdr.GetBytes(tag)
		if err != nil {
			continue
		}
		id, err := issuerKeyID(blob)
		if err != nil {
			continue
		}
		full := fmt.Sprintf("%016x", id)
		return full[8:]
	}
	return ""
}

func issuerKeyID(blob []byte) (uint64, error) {
	p, err := packet.Read(bytes.NewReader(blob))
	if err != nil {
		return 0, err
	}

	sig, ok := p.(*packet.Signature)
	if !ok {
		return 0, fmt.Errorf("unexpected packet %T", p)
	}
	if sig.IssuerKeyId == nil {
		return 0, fmt.Errorf("signature has no issuer")
	}
	return *sig.IssuerKeyId, nil
}
