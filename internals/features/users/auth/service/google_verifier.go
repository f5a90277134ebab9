package service

import (
	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

type GoogleIdentity struct {
	Sub   string
	Email string
	Name  string
}

type GoogleVerifier interface {
	Verify(idToken string, audience string) (*GoogleIdentity, error)
}

// futurendaVerifier memverifikasi ID token dengan sertifikat publik Google.
type futurendaVerifier struct{}

func NewGoogleVerifier() GoogleVerifier { return futurendaVerifier{} }

func (futurendaVerifier) Verify(idToken, audience string) (*GoogleIdentity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{audience}); err != nil {
		return nil, err
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, err
	}
	return &GoogleIdentity{Sub: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}
