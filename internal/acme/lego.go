package acme

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/dns"
	"github.com/go-acme/lego/v4/registration"
)

const accountKeyName = "account.key"

// LegoIssuer performs the ACME flow in-process via go-acme/lego. It needs no
// installer download, which makes it the right client for air-gapped-at-boot
// deployments; everything else about the workflow is identical.
type LegoIssuer struct {
	homeDir  string
	email    string
	caDirURL string
}

// NewLegoIssuer constructs the embedded issuer. Account state lives under
// homeDir.
func NewLegoIssuer(homeDir, email, caDirURL string) *LegoIssuer {
	return &LegoIssuer{homeDir: homeDir, email: email, caDirURL: caDirURL}
}

// AccountKeyPath returns the location of the ACME account private key.
func (l *LegoIssuer) AccountKeyPath() string {
	return filepath.Join(l.homeDir, accountKeyName)
}

// Installed reports whether an account key already exists. The embedded
// client has no binary to install; its account state plays that role.
func (l *LegoIssuer) Installed() bool {
	info, err := os.Stat(l.AccountKeyPath())
	return err == nil && info.Mode().IsRegular()
}

// EnsureInstalled generates and persists an account key when absent.
func (l *LegoIssuer) EnsureInstalled(_ context.Context) error {
	if l.Installed() {
		return nil
	}
	if err := os.MkdirAll(l.homeDir, 0o755); err != nil {
		return fmt.Errorf("create acme home: %w", err)
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate account key: %w", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return fmt.Errorf("encode account key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(l.AccountKeyPath(), pemBytes, 0o600); err != nil {
		return fmt.Errorf("write account key: %w", err)
	}
	if !l.Installed() {
		return fmt.Errorf("account key missing after generation at %s", l.AccountKeyPath())
	}
	return nil
}

// Issue registers the account when needed, solves the DNS-01 challenge via
// the named provider, and writes the bundle files. Credentials are applied
// to the process environment immediately before provider construction; this
// is a single-invocation process, so the mutation does not leak across runs.
func (l *LegoIssuer) Issue(ctx context.Context, req IssueRequest) error {
	if req.Domain == "" {
		return errors.New("domain required")
	}
	if req.Provider == "" {
		return errors.New("dns provider required")
	}

	key, err := l.loadAccountKey()
	if err != nil {
		return err
	}
	account := &legoAccount{email: l.email, key: key}

	cfg := lego.NewConfig(account)
	cfg.CADirURL = l.caDirURL
	cfg.Certificate.KeyType = certcrypto.EC256

	client, err := lego.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("create acme client: %w", err)
	}

	for name, value := range req.Credentials {
		os.Setenv(name, value)
	}
	provider, err := dns.NewDNSChallengeProviderByName(req.Provider)
	if err != nil {
		return fmt.Errorf("dns provider %q: %w", req.Provider, err)
	}
	if err := client.Challenge.SetDNS01Provider(provider, dns01.AddDNSTimeout(10*time.Minute)); err != nil {
		return fmt.Errorf("set dns-01 provider: %w", err)
	}

	reg, err := client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return fmt.Errorf("register acme account: %w", err)
	}
	account.registration = reg

	resource, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{req.Domain},
		Bundle:  true,
	})
	if err != nil {
		return fmt.Errorf("obtain certificate for %s: %w", req.Domain, err)
	}

	if err := os.WriteFile(req.KeyPath, resource.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}
	if err := os.WriteFile(req.ChainPath, resource.Certificate, 0o644); err != nil {
		return fmt.Errorf("write certificate chain: %w", err)
	}

	if req.ReloadCommand != "" {
		cmd := commandContext(ctx, "sh", "-c", req.ReloadCommand)
		if output, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("reload command failed: %w: %s", err, tail(output))
		}
	}
	return nil
}

// RenewCommand re-runs issuance through the CLI; the renew command forces
// re-issuance for the configured domain regardless of bundle presence.
func (l *LegoIssuer) RenewCommand() string {
	return "certpilot renew"
}

func (l *LegoIssuer) loadAccountKey() (crypto.PrivateKey, error) {
	data, err := os.ReadFile(l.AccountKeyPath())
	if err != nil {
		return nil, fmt.Errorf("read account key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("account key is not PEM encoded")
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	return nil, errors.New("unsupported account key type")
}

type legoAccount struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (a *legoAccount) GetEmail() string { return a.email }

func (a *legoAccount) GetRegistration() *registration.Resource { return a.registration }

func (a *legoAccount) GetPrivateKey() crypto.PrivateKey { return a.key }

var _ Issuer = (*LegoIssuer)(nil)
