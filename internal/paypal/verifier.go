package paypal

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"strings"
	"time"

	"photohunt/config"
)

// Webhook transmission headers sent by PayPal with every notification.
const (
	HeaderTransmissionID   = "Paypal-Transmission-Id"
	HeaderTransmissionTime = "Paypal-Transmission-Time"
	HeaderCertURL          = "Paypal-Cert-Url"
	HeaderTransmissionSig  = "Paypal-Transmission-Sig"
)

// Verdict reasons. Callers branch on these, so they are part of the contract.
const (
	ReasonMissingWebhookID   = "missing webhook id configuration"
	ReasonMissingHeaders     = "missing required headers"
	ReasonValidationAccepted = "validation request accepted"
	ReasonInvalidCertURL     = "invalid certificate url"
	ReasonCertFetchError     = "certificate fetch error"
	ReasonCryptoError        = "crypto verification error"
	ReasonVerified           = "webhook verified"
	ReasonSignatureFailed    = "signature verification failed"
	ReasonSandboxBypass      = "sandbox accepted despite failed verification"
)

// WebhookRequest carries the five inputs verification reads from the
// transport layer. Body must be the exact bytes received on the wire: the
// signature covers a hash of those bytes, so a re-serialized payload with
// different key order or whitespace will never validate.
type WebhookRequest struct {
	TransmissionID string
	Timestamp      string
	CertURL        string
	Signature      string
	Body           []byte
}

// RequestFromHTTP extracts the transmission headers from an inbound request.
// The caller reads the body itself (it is consumed once) and passes it here.
func RequestFromHTTP(r *http.Request, body []byte) WebhookRequest {
	return WebhookRequest{
		TransmissionID: r.Header.Get(HeaderTransmissionID),
		Timestamp:      r.Header.Get(HeaderTransmissionTime),
		CertURL:        r.Header.Get(HeaderCertURL),
		Signature:      r.Header.Get(HeaderTransmissionSig),
		Body:           body,
	}
}

// Verdict is the outcome of one verification. Warning marks the sandbox
// bypass so operators can audit it independently of production behavior.
type Verdict struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
	Warning  bool   `json:"warning,omitempty"`
}

// Verifier authenticates inbound webhook requests against the certificate
// chain PayPal transmits with each notification. It holds no state across
// requests; concurrent calls are independent.
type Verifier struct {
	cfg    config.PayPalConfig
	client *http.Client
}

func NewVerifier(cfg config.PayPalConfig, client *http.Client) *Verifier {
	if client == nil {
		timeout := cfg.CertFetchTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Verifier{cfg: cfg, client: client}
}

type eventEnvelope struct {
	EventType string `json:"event_type"`
}

// Verify checks that the request was signed by PayPal. Rules are evaluated in
// order and the first match decides; no network fetch happens before the
// certificate URL passes the origin allowlist.
func (v *Verifier) Verify(ctx context.Context, req WebhookRequest) Verdict {
	if v.cfg.WebhookID == "" {
		return Verdict{Verified: false, Reason: ReasonMissingWebhookID}
	}

	if req.TransmissionID == "" || req.Timestamp == "" || req.CertURL == "" ||
		req.Signature == "" || len(req.Body) == 0 {
		return Verdict{Verified: false, Reason: ReasonMissingHeaders}
	}

	// Endpoint reachability probes carry no signature to check.
	var envelope eventEnvelope
	if err := json.Unmarshal(req.Body, &envelope); err == nil && envelope.EventType == "VALIDATION" {
		return Verdict{Verified: true, Reason: ReasonValidationAccepted}
	}

	// Never verify against a certificate fetched from an attacker-supplied
	// origin.
	sandbox := strings.HasPrefix(req.CertURL, v.cfg.SandboxAPIBase)
	if !strings.HasPrefix(req.CertURL, v.cfg.LiveAPIBase) && !sandbox {
		return Verdict{Verified: false, Reason: ReasonInvalidCertURL}
	}

	cert, err := v.fetchCertificate(ctx, req.CertURL)
	if err != nil {
		return Verdict{Verified: false, Reason: ReasonCertFetchError}
	}

	bodyHash := sha256.Sum256(req.Body)
	signed := req.TransmissionID + "|" + req.Timestamp + "|" + v.cfg.WebhookID + "|" + hex.EncodeToString(bodyHash[:])

	pub, err := parseRSAPublicKey(cert)
	if err != nil {
		return Verdict{Verified: false, Reason: ReasonCryptoError}
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return Verdict{Verified: false, Reason: ReasonCryptoError}
	}

	digest := sha256.Sum256([]byte(signed))
	err = rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
		Hash:       crypto.SHA256,
	})
	if err == nil {
		return Verdict{Verified: true, Reason: ReasonVerified}
	}

	if sandbox && v.cfg.AllowSandboxBypass {
		return Verdict{Verified: true, Warning: true, Reason: ReasonSandboxBypass}
	}
	return Verdict{Verified: false, Reason: ReasonSignatureFailed}
}

func (v *Verifier) fetchCertificate(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &fetchStatusError{status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type fetchStatusError struct {
	status int
}

func (e *fetchStatusError) Error() string {
	return "unexpected certificate response status " + http.StatusText(e.status)
}

func parseRSAPublicKey(certPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, errNotPEM
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errNotRSA
	}
	return pub, nil
}

var (
	errNotPEM = &certError{"certificate is not PEM encoded"}
	errNotRSA = &certError{"certificate public key is not RSA"}
)

type certError struct {
	msg string
}

func (e *certError) Error() string { return e.msg }
