package paypal

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"photohunt/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyAndCertPEM(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "webhook-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func signTransmission(t *testing.T, key *rsa.PrivateKey, transmissionID, timestamp, webhookID string, body []byte) string {
	t.Helper()
	bodyHash := sha256.Sum256(body)
	signed := transmissionID + "|" + timestamp + "|" + webhookID + "|" + hex.EncodeToString(bodyHash[:])
	digest := sha256.Sum256([]byte(signed))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

// testEnv serves a certificate under both a "live" and a "sandbox" path so the
// origin allowlist can be exercised against a local server.
type testEnv struct {
	key        *rsa.PrivateKey
	server     *httptest.Server
	fetchCount int64
	cfg        config.PayPalConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	key, certPEM := newKeyAndCertPEM(t)
	env := &testEnv{key: key}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&env.fetchCount, 1)
		switch r.URL.Path {
		case "/live/cert.pem", "/sandbox/cert.pem":
			_, _ = w.Write(certPEM)
		case "/live/garbage.pem":
			_, _ = w.Write([]byte("not a certificate"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(env.server.Close)
	env.cfg = config.PayPalConfig{
		WebhookID:        "WH1",
		LiveAPIBase:      env.server.URL + "/live/",
		SandboxAPIBase:   env.server.URL + "/sandbox/",
		CertFetchTimeout: 5 * time.Second,
	}
	return env
}

func (e *testEnv) request(t *testing.T, body []byte, certPath string) WebhookRequest {
	t.Helper()
	return WebhookRequest{
		TransmissionID: "T1",
		Timestamp:      "1700000000",
		CertURL:        e.server.URL + certPath,
		Signature:      signTransmission(t, e.key, "T1", "1700000000", "WH1", body),
		Body:           body,
	}
}

func TestVerifyMissingWebhookID(t *testing.T) {
	env := newTestEnv(t)
	cfg := env.cfg
	cfg.WebhookID = ""
	v := NewVerifier(cfg, nil)

	verdict := v.Verify(context.Background(), env.request(t, []byte(`{"a":1}`), "/live/cert.pem"))

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonMissingWebhookID, verdict.Reason)
	assert.Zero(t, atomic.LoadInt64(&env.fetchCount))
}

func TestVerifyMissingHeaders(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)
	base := env.request(t, []byte(`{"a":1}`), "/live/cert.pem")

	mutations := map[string]func(r *WebhookRequest){
		"transmission id": func(r *WebhookRequest) { r.TransmissionID = "" },
		"timestamp":       func(r *WebhookRequest) { r.Timestamp = "" },
		"cert url":        func(r *WebhookRequest) { r.CertURL = "" },
		"signature":       func(r *WebhookRequest) { r.Signature = "" },
		"body":            func(r *WebhookRequest) { r.Body = nil },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := base
			mutate(&req)
			verdict := v.Verify(context.Background(), req)
			assert.False(t, verdict.Verified)
			assert.Equal(t, ReasonMissingHeaders, verdict.Reason)
		})
	}
	assert.Zero(t, atomic.LoadInt64(&env.fetchCount))
}

func TestVerifyValidationRequestSkipsFetch(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	req := env.request(t, []byte(`{"event_type":"VALIDATION"}`), "/live/cert.pem")
	req.Signature = "bm90LWEtcmVhbC1zaWduYXR1cmU=" // never checked

	verdict := v.Verify(context.Background(), req)

	assert.True(t, verdict.Verified)
	assert.Equal(t, ReasonValidationAccepted, verdict.Reason)
	assert.False(t, verdict.Warning)
	assert.Zero(t, atomic.LoadInt64(&env.fetchCount), "validation requests must not trigger a certificate fetch")
}

func TestVerifyRejectsForeignCertOrigin(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	req := env.request(t, []byte(`{"a":1}`), "/live/cert.pem")
	req.CertURL = "https://evil.example.com/cert.pem"

	verdict := v.Verify(context.Background(), req)

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonInvalidCertURL, verdict.Reason)
	assert.Zero(t, atomic.LoadInt64(&env.fetchCount), "origin check must precede the fetch")
}

func TestVerifyCertFetchFailure(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	verdict := v.Verify(context.Background(), env.request(t, []byte(`{"a":1}`), "/live/missing.pem"))

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonCertFetchError, verdict.Reason)
}

func TestVerifyCancelledContextResolvesToFetchError(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	verdict := v.Verify(ctx, env.request(t, []byte(`{"a":1}`), "/live/cert.pem"))

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonCertFetchError, verdict.Reason)
}

func TestVerifyValidSignature(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	verdict := v.Verify(context.Background(), env.request(t, []byte(`{"a":1}`), "/live/cert.pem"))

	assert.True(t, verdict.Verified)
	assert.Equal(t, ReasonVerified, verdict.Reason)
	assert.False(t, verdict.Warning)
}

func TestVerifyCorruptedSignature(t *testing.T) {
	corrupt := func(t *testing.T, sig string) string {
		raw, err := base64.StdEncoding.DecodeString(sig)
		require.NoError(t, err)
		raw[0] ^= 0xff
		return base64.StdEncoding.EncodeToString(raw)
	}

	t.Run("live rejects", func(t *testing.T) {
		env := newTestEnv(t)
		v := NewVerifier(env.cfg, nil)
		req := env.request(t, []byte(`{"a":1}`), "/live/cert.pem")
		req.Signature = corrupt(t, req.Signature)

		verdict := v.Verify(context.Background(), req)

		assert.False(t, verdict.Verified)
		assert.Equal(t, ReasonSignatureFailed, verdict.Reason)
	})

	t.Run("sandbox with bypass accepts with warning", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := env.cfg
		cfg.AllowSandboxBypass = true
		v := NewVerifier(cfg, nil)
		req := env.request(t, []byte(`{"a":1}`), "/sandbox/cert.pem")
		req.Signature = corrupt(t, req.Signature)

		verdict := v.Verify(context.Background(), req)

		assert.True(t, verdict.Verified)
		assert.True(t, verdict.Warning)
		assert.Equal(t, ReasonSandboxBypass, verdict.Reason)
	})

	t.Run("sandbox without bypass rejects", func(t *testing.T) {
		env := newTestEnv(t)
		v := NewVerifier(env.cfg, nil)
		req := env.request(t, []byte(`{"a":1}`), "/sandbox/cert.pem")
		req.Signature = corrupt(t, req.Signature)

		verdict := v.Verify(context.Background(), req)

		assert.False(t, verdict.Verified)
		assert.Equal(t, ReasonSignatureFailed, verdict.Reason)
	})
}

func TestVerifyMalformedCertificate(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	verdict := v.Verify(context.Background(), env.request(t, []byte(`{"a":1}`), "/live/garbage.pem"))

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonCryptoError, verdict.Reason)
}

func TestVerifyMalformedSignatureEncoding(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)
	req := env.request(t, []byte(`{"a":1}`), "/live/cert.pem")
	req.Signature = "%%% not base64 %%%"

	verdict := v.Verify(context.Background(), req)

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonCryptoError, verdict.Reason)
}

// The signed-data string must be the exact concatenation
// transmissionId|timestamp|webhookId|sha256hex(body); a body that is
// re-encoded with different whitespace must not validate.
func TestVerifyHashesExactBodyBytes(t *testing.T) {
	env := newTestEnv(t)
	v := NewVerifier(env.cfg, nil)

	req := env.request(t, []byte(`{"a":1}`), "/live/cert.pem")
	req.Body = []byte(`{"a": 1}`)

	verdict := v.Verify(context.Background(), req)

	assert.False(t, verdict.Verified)
	assert.Equal(t, ReasonSignatureFailed, verdict.Reason)
}

func TestRequestFromHTTP(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/api/v1/webhooks/paypal", nil)
	require.NoError(t, err)
	r.Header.Set(HeaderTransmissionID, "T1")
	r.Header.Set(HeaderTransmissionTime, "1700000000")
	r.Header.Set(HeaderCertURL, "https://api.paypal.com/cert.pem")
	r.Header.Set(HeaderTransmissionSig, "c2ln")

	req := RequestFromHTTP(r, []byte(`{"a":1}`))

	assert.Equal(t, "T1", req.TransmissionID)
	assert.Equal(t, "1700000000", req.Timestamp)
	assert.Equal(t, "https://api.paypal.com/cert.pem", req.CertURL)
	assert.Equal(t, "c2ln", req.Signature)
	assert.Equal(t, []byte(`{"a":1}`), req.Body)
}
