package pasetotoken

import (
	"encoding/hex"

	paseto "aidanwoods.dev/go-paseto"
)

type Mode string

const (
	// ModeLocal uses a shared symmetric key (v4.local).
	ModeLocal Mode = "local"
	// ModePublic uses an Ed25519 keypair (v4.public).
	ModePublic Mode = "public"
)

type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey

	Secret *paseto.V4AsymmetricSecretKey
	Public *paseto.V4AsymmetricPublicKey
}

// LoadKeys builds Keys from hex-encoded material. For ModeLocal only
// symmetricHex is read; for ModePublic secretHex and/or publicHex are read
// (a verifier-only process may load just the public key).
func LoadKeys(mode Mode, symmetricHex, secretHex, publicHex string) (Keys, error) {
	switch mode {
	case ModeLocal:
		if symmetricHex == "" {
			return Keys{}, ErrConfig{Msg: "symmetric key is required in local mode"}
		}
		k, err := paseto.V4SymmetricKeyFromHex(symmetricHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "invalid symmetric key: " + err.Error()}
		}
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil

	case ModePublic:
		out := Keys{Mode: ModePublic}
		if secretHex != "" {
			sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
			if err != nil {
				return Keys{}, ErrConfig{Msg: "invalid secret key: " + err.Error()}
			}
			out.Secret = &sk
			pk := sk.Public()
			out.Public = &pk
		}
		if publicHex != "" {
			pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
			if err != nil {
				return Keys{}, ErrConfig{Msg: "invalid public key: " + err.Error()}
			}
			out.Public = &pk
		}
		if out.Secret == nil && out.Public == nil {
			return Keys{}, ErrConfig{Msg: "public mode needs a secret or public key"}
		}
		return out, nil

	default:
		return Keys{}, ErrConfig{Msg: "unknown mode: " + string(mode)}
	}
}

// NewLocalKeys generates a fresh symmetric key. Useful for tests.
func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

// NewPublicKeys generates a fresh Ed25519 keypair. Useful for tests.
func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}

// ExportHex returns the hex encodings of whichever keys are present.
func (k Keys) ExportHex() (symmetric, secret, public string) {
	if k.Symmetric != nil {
		symmetric = k.Symmetric.ExportHex()
	}
	if k.Secret != nil {
		secret = hex.EncodeToString(k.Secret.ExportBytes())
	}
	if k.Public != nil {
		public = hex.EncodeToString(k.Public.ExportBytes())
	}
	return
}
