package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type VerificationServiceInterface interface {
	Resolve(ctx context.Context, pointer model.Pointer) (string, error)
}

// VerificationService turns an authenticity pointer into the URL of the
// issuer's official certificate PDF.
type VerificationService struct {
	client     *IssuerClient
	pageURL    string
	anchorText string
	log        *logrus.Entry
}

func NewVerificationService(cfg *config.VerifierConfig, client *IssuerClient, logger *logrus.Entry) *VerificationService {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &VerificationService{
		client:     client,
		pageURL:    config.PageURLTemplate(cfg.VerificationPageURL),
		anchorText: cfg.AnchorText,
		log:        logger.WithField("component", "verification_service"),
	}
}

func (s *VerificationService) Resolve(ctx context.Context, pointer model.Pointer) (string, error) {
	switch pointer.Kind {
	case model.PointerQR:
		return s.resolveQR(ctx, pointer.Value)
	case model.PointerLink:
		// The embedded annotation already points at the issuer backend.
		if pointer.Value == "" {
			return "", fmt.Errorf("empty embedded link: %w", model.ErrNotFound)
		}
		return pointer.Value, nil
	default:
		return "", fmt.Errorf("no authenticity pointer: %w", model.ErrNotFound)
	}
}

// VerificationPageURL builds the issuer page for a QR payload. The
// certificate identifier is the last path segment of the payload.
func (s *VerificationService) VerificationPageURL(payload string) string {
	id := payload
	if i := strings.LastIndex(payload, "/"); i >= 0 {
		id = payload[i+1:]
	}
	return fmt.Sprintf(s.pageURL, url.QueryEscape(id))
}

func (s *VerificationService) resolveQR(ctx context.Context, payload string) (string, error) {
	pageURL := s.VerificationPageURL(payload)
	body, err := s.client.Get(ctx, pageURL)
	if err != nil {
		s.log.WithError(err).Warnf("error accessing URL %s", pageURL)
		return "", fmt.Errorf("%v: %w", err, model.ErrNetwork)
	}

	href, err := findAnchorHref(body, s.anchorText)
	if err != nil {
		return "", fmt.Errorf("parse %s: %v: %w", pageURL, err, model.ErrNotFound)
	}
	if href == "" {
		s.log.Warnf("no '%s' link found at %s", s.anchorText, pageURL)
		return "", fmt.Errorf("no %q link at %s: %w", s.anchorText, pageURL, model.ErrNotFound)
	}
	return absoluteURL(pageURL, href)
}

func absoluteURL(base, href string) (string, error) {
	if strings.HasPrefix(href, "http") {
		return href, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %s: %v: %w", base, err, model.ErrNotFound)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %s: %v: %w", href, err, model.ErrNotFound)
	}
	return b.ResolveReference(ref).String(), nil
}

// findAnchorHref returns the href of the first <a> whose text is exactly
// text, or "" when there is none.
func findAnchorHref(page []byte, text string) (string, error) {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	var walk func(n *html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A && nodeText(n) == text {
			return attr(n, "href"), true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if href, ok := walk(c); ok {
				return href, true
			}
		}
		return "", false
	}
	href, _ := walk(root)
	return href, nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
