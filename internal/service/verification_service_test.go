package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.VerifierConfig {
	cfg := config.DefaultVerifierConfig()
	cfg.VerificationPageURL = baseURL + "/noc/Ecertificate/?q=%s"
	cfg.HTTPTimeout = 5 * time.Second
	cfg.RequestsPerSecond = 0
	return cfg
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*VerificationService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := testConfig(srv.URL)
	log := logrus.NewEntry(logrus.New())
	return NewVerificationService(cfg, NewIssuerClient(cfg), log), srv
}

func TestResolve_QRFindsAnchor(t *testing.T) {
	var gotQuery string
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `<html><body>
			<a href="https://example.org/other.pdf">Other</a>
			<a href="https://internalapp.nptel.ac.in/noc/cert/NPTEL24CS01S123.pdf">Course Certificate</a>
		</body></html>`)
	})

	link, err := svc.Resolve(context.Background(), model.QRPointer("https://nptel.ac.in/noc/E_Certificate/NPTEL24CS01S123"))

	require.NoError(t, err)
	assert.Equal(t, "NPTEL24CS01S123", gotQuery)
	assert.Equal(t, "https://internalapp.nptel.ac.in/noc/cert/NPTEL24CS01S123.pdf", link)
}

func TestResolve_RelativeHref(t *testing.T) {
	svc, srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/content/cert.pdf"><b>Course Certificate</b></a>`)
	})

	link, err := svc.Resolve(context.Background(), model.QRPointer("ABC123"))

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/content/cert.pdf", link)
}

func TestResolve_MissingAnchor(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/x.pdf">Course Certificate (copy)</a><p>Course Certificate</p>`)
	})

	_, err := svc.Resolve(context.Background(), model.QRPointer("ABC123"))

	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolve_PageUnavailable(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Resolve(context.Background(), model.QRPointer("ABC123"))

	assert.ErrorIs(t, err, model.ErrNetwork)
}

func TestResolve_LinkPassthrough(t *testing.T) {
	calls := 0
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	link, err := svc.Resolve(context.Background(), model.LinkPointer("https://internalapp.nptel.ac.in/a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://internalapp.nptel.ac.in/a.pdf", link)

	_, err = svc.Resolve(context.Background(), model.NoPointer())
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Zero(t, calls)
}

func TestVerificationPageURL(t *testing.T) {
	cfg := config.DefaultVerifierConfig()
	svc := NewVerificationService(cfg, NewIssuerClient(cfg), logrus.NewEntry(logrus.New()))

	assert.Equal(t, "https://archive.nptel.ac.in/noc/Ecertificate/?q=NPTEL24CS01S123",
		svc.VerificationPageURL("https://nptel.ac.in/noc/E_Certificate/NPTEL24CS01S123"))
	assert.Equal(t, "https://archive.nptel.ac.in/noc/Ecertificate/?q=a+b%26c",
		svc.VerificationPageURL("a b&c"))
}

func TestNewVerificationService_Fallbacks(t *testing.T) {
	cfg := config.DefaultVerifierConfig()
	cfg.VerificationPageURL = "https://archive.nptel.ac.in/noc/Ecertificate/"

	svc := NewVerificationService(cfg, NewIssuerClient(cfg), nil)

	require.NotNil(t, svc.log)
	assert.Equal(t, "https://archive.nptel.ac.in/noc/Ecertificate/?q=NPTEL1", svc.VerificationPageURL("NPTEL1"))
}
