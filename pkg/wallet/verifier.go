package wallet

// FormatVerifier accepts any well-formed signature from a well-formed
// address. On-chain signature recovery is out of scope for the server.
type FormatVerifier struct{}

func NewFormatVerifier() *FormatVerifier { return &FormatVerifier{} }

func (FormatVerifier) VerifySignature(address, message, signature string) error {
	if !addressRe.MatchString(address) {
		return ErrInvalidAddress
	}
	if message == "" {
		return ErrInvalidSignature
	}
	if !signatureRe.MatchString(signature) {
		return ErrInvalidSignature
	}
	return nil
}
