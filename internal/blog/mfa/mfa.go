// Package mfa wraps TOTP enrollment and verification for the second login
// factor.
package mfa

import (
	"bytes"
	"encoding/base32"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	DefaultIssuer = "SimpleRESTBlog"

	// Period is the TOTP step.
	Period = 30

	// QRSize is the edge length in pixels of rendered enrollment codes.
	QRSize = 256
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Verifier generates enrollment material and checks submitted codes. Codes
// are six digits, SHA1, 30 second steps. Skew is the number of neighbouring
// steps also accepted; zero means only the current step.
type Verifier struct {
	Issuer string
	Skew   uint
}

func NewVerifier(issuer string, skew uint) *Verifier {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Verifier{Issuer: issuer, Skew: skew}
}

// GenerateSecret returns a fresh base32 secret for username.
func (v *Verifier) GenerateSecret(username string) (string, error) {
	key, err := totp.Generate(v.generateOpts(username, nil))
	if err != nil {
		return "", fmt.Errorf("mfa: generate secret: %w", err)
	}
	return key.Secret(), nil
}

// Enroll returns the otpauth:// provisioning URI binding secret to username.
func (v *Verifier) Enroll(username, secret string) (string, error) {
	raw, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return "", fmt.Errorf("mfa: decode secret: %w", err)
	}

	key, err := totp.Generate(v.generateOpts(username, raw))
	if err != nil {
		return "", fmt.Errorf("mfa: build provisioning uri: %w", err)
	}
	return key.URL(), nil
}

// RenderQR encodes a provisioning URI as a PNG QR code.
func (v *Verifier) RenderQR(uri string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("mfa: parse uri: %w", err)
	}
	if !strings.HasPrefix(uri, "otpauth://") || key.Type() != "totp" {
		return nil, errors.New("mfa: not a totp provisioning uri")
	}

	img, err := key.Image(QRSize, QRSize)
	if err != nil {
		return nil, fmt.Errorf("mfa: render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("mfa: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify reports whether code is valid for secret at now. A code of the
// wrong length is simply invalid; an undecodable secret is an error.
func (v *Verifier) Verify(secret, code string, now time.Time) (bool, error) {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, now.UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      v.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if errors.Is(err, otp.ErrValidateInputInvalidLength) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mfa: validate: %w", err)
	}
	return ok, nil
}

func (v *Verifier) generateOpts(username string, secret []byte) totp.GenerateOpts {
	return totp.GenerateOpts{
		Issuer:      v.Issuer,
		AccountName: username,
		Period:      Period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Secret:      secret,
	}
}
