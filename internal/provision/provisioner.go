package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"certpilot/internal/acme"
	"certpilot/internal/certstore"
	"certpilot/internal/config"
	"certpilot/internal/renewal"
)

// Action names the outcome of a provisioning run.
type Action string

const (
	ActionDisabled        Action = "disabled"
	ActionSkippedNoDomain Action = "skipped-no-domain"
	ActionManualVerified  Action = "manual-verified"
	ActionManualMissing   Action = "manual-missing"
	ActionIssued          Action = "issued"
	ActionAlreadyIssued   Action = "already-issued"
	ActionRenewed         Action = "renewed"
)

// Result summarizes a completed (or benignly skipped) run.
type Result struct {
	RunID  string
	Action Action
	Domain string
}

// Record is the journal row written after every run, fatal or not.
type Record struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Domain     string
	Action     Action
	Outcome    string
	Message    string
}

// Recorder persists run records. Journal failures are advisory; the
// workflow never fails because its journal does.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithRecorder attaches a run journal.
func WithRecorder(rec Recorder) Option {
	return func(p *Provisioner) { p.recorder = rec }
}

// WithEnviron overrides the environment snapshot used for credential
// unwrapping.
func WithEnviron(environ func() []string) Option {
	return func(p *Provisioner) {
		if environ != nil {
			p.environ = environ
		}
	}
}

// Provisioner coordinates the certificate provisioning workflow.
type Provisioner struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *certstore.Store
	issuer    acme.Issuer
	scheduler renewal.Scheduler
	recorder  Recorder
	environ   func() []string
	lock      *flock.Flock
}

// New constructs a provisioner. The issuer and scheduler are injected so the
// workflow stays independent of any specific ACME client or cron mechanism.
func New(cfg *config.Config, logger *slog.Logger, issuer acme.Issuer, scheduler renewal.Scheduler, opts ...Option) *Provisioner {
	p := &Provisioner{
		cfg:       cfg,
		logger:    logger.With("component", "provision"),
		store:     certstore.New(cfg.Paths.CertsDir),
		issuer:    issuer,
		scheduler: scheduler,
		environ:   os.Environ,
		lock:      flock.New(filepath.Join(cfg.Paths.CertsDir, ".provision.lock")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store exposes the certificate store backing this provisioner.
func (p *Provisioner) Store() *certstore.Store {
	return p.store
}

// Run executes the workflow. A nil error means success or a benign skip; any
// returned error is fatal and the caller should exit non-zero.
func (p *Provisioner) Run(ctx context.Context) (Result, error) {
	return p.execute(ctx, p.run)
}

// Renew forces re-issuance regardless of an existing bundle and repoints the
// stable alias. The scheduled renewal job invokes this when the embedded
// client is in use; the shell client renews through its own cron entry.
func (p *Provisioner) Renew(ctx context.Context) (Result, error) {
	return p.execute(ctx, p.renew)
}

func (p *Provisioner) execute(ctx context.Context, fn func(context.Context, *slog.Logger, *Result) error) (Result, error) {
	started := time.Now().UTC()
	result := Result{RunID: uuid.NewString(), Domain: p.cfg.TLS.Domain}
	log := p.logger.With("run_id", result.RunID)

	err := fn(ctx, log, &result)

	outcome, message := "ok", string(result.Action)
	if err != nil {
		outcome, message = "error", err.Error()
	}
	p.record(ctx, log, Record{
		RunID:      result.RunID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		Domain:     result.Domain,
		Action:     result.Action,
		Outcome:    outcome,
		Message:    message,
	})
	return result, err
}

func (p *Provisioner) run(ctx context.Context, log *slog.Logger, result *Result) error {
	tls := p.cfg.TLS

	switch {
	case !tls.Enabled:
		// State 4: no action, no operator-visible output.
		result.Action = ActionDisabled
		log.Debug("tls disabled; nothing to do")
		return nil

	case tls.AutoIssue && tls.Domain == "":
		// State 2: advisory only; TLS may be configured manually elsewhere.
		result.Action = ActionSkippedNoDomain
		log.Warn("auto-issue enabled but no domain configured; skipping certificate provisioning")
		return nil

	case !tls.AutoIssue:
		// State 3: verify a manually supplied bundle, never mutate.
		if p.store.HasLatestBundle() {
			result.Action = ActionManualVerified
			log.Info("certificate detected at stable alias", "path", p.store.LatestDir())
		} else {
			result.Action = ActionManualMissing
			log.Warn("tls enabled without auto-issue but no certificate found at stable alias",
				"path", p.store.LatestDir())
		}
		return nil
	}

	// State 1: full provisioning.
	return p.provision(ctx, log, result)
}

func (p *Provisioner) provision(ctx context.Context, log *slog.Logger, result *Result) error {
	domain := p.cfg.TLS.Domain

	if err := os.MkdirAll(p.store.Root(), 0o755); err != nil {
		return Wrap(ErrConfiguration, "prepare", "create certificate root", err)
	}
	locked, err := p.lock.TryLock()
	if err != nil {
		return Wrap(ErrExternalTool, "lock", "acquire provisioning lock", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock held at %s)", ErrLocked, p.lock.Path())
	}
	defer func() {
		if unlockErr := p.lock.Unlock(); unlockErr != nil {
			log.Warn("failed to release provisioning lock", "error", unlockErr)
		}
	}()

	// Step 1: directory preparation and ownership.
	if err := p.store.EnsureDomainDir(domain); err != nil {
		return Wrap(ErrConfiguration, "prepare", "create bundle directory", err)
	}
	if err := p.store.ApplyOwnership(p.cfg.TLS.OwnerUser, p.cfg.TLS.OwnerGroup); err != nil {
		log.Warn("certificate ownership not applied", "error", err)
	}

	issuanceNeeded := !p.store.HasBundle(domain)

	// The DNS provider is only needed for issuance, but checking it before
	// the installer runs keeps a misconfigured container from reaching the
	// network at all.
	if issuanceNeeded && p.cfg.ACME.DNSProvider == "" {
		return Wrap(ErrConfiguration, "issue", "dns provider not configured (set DNS_PROVIDER)", nil)
	}

	// Step 2: client installation, once.
	if !p.issuer.Installed() {
		if p.cfg.ACME.Email == "" {
			log.Warn("no account email configured; expiry reminders will not be sent (set ACME_EMAIL)")
		}
		log.Info("installing acme client")
		if err := p.issuer.EnsureInstalled(ctx); err != nil {
			return Wrap(ErrInstallation, "install", "install acme client", err)
		}
	}

	// Step 3: issuance, skipped entirely when the bundle already exists.
	if issuanceNeeded {
		credentials, rejected := UnwrapCredentials(p.environ(), CredentialPrefix)
		for _, name := range rejected {
			log.Warn("ignoring credential variable with invalid name", "name", CredentialPrefix+name)
		}

		log.Info("issuing certificate", "domain", domain, "provider", p.cfg.ACME.DNSProvider)
		request := acme.IssueRequest{
			Domain:        domain,
			Provider:      p.cfg.ACME.DNSProvider,
			Credentials:   credentials,
			KeyPath:       p.store.KeyPath(domain),
			ChainPath:     p.store.ChainPath(domain),
			ReloadCommand: p.cfg.TLS.ReloadCommand,
		}
		if err := p.issuer.Issue(ctx, request); err != nil {
			return Wrap(ErrIssuance, "issue", "obtain certificate", err)
		}
		if err := p.store.SetLatest(domain); err != nil {
			return Wrap(ErrIssuance, "alias", "repoint stable alias", err)
		}
		result.Action = ActionIssued
		log.Info("certificate issued", "domain", domain, "alias", p.store.LatestDir())
	} else {
		result.Action = ActionAlreadyIssued
		log.Info("certificate bundle already present; skipping issuance", "domain", domain)
	}

	// Step 4: always rewrite the renewal schedule so it heals across
	// container restarts.
	if err := p.scheduler.Schedule(ctx); err != nil {
		return Wrap(ErrExternalTool, "schedule", "write renewal schedule", err)
	}
	log.Info("renewal schedule written")
	return nil
}

func (p *Provisioner) renew(ctx context.Context, log *slog.Logger, result *Result) error {
	tls := p.cfg.TLS
	if !tls.Enabled || !tls.AutoIssue || tls.Domain == "" {
		return Wrap(ErrConfiguration, "renew",
			"renewal requires tls enabled, auto-issue, and a configured domain", nil)
	}
	if p.cfg.ACME.DNSProvider == "" {
		return Wrap(ErrConfiguration, "renew", "dns provider not configured (set DNS_PROVIDER)", nil)
	}
	domain := tls.Domain

	if err := os.MkdirAll(p.store.Root(), 0o755); err != nil {
		return Wrap(ErrConfiguration, "prepare", "create certificate root", err)
	}
	locked, err := p.lock.TryLock()
	if err != nil {
		return Wrap(ErrExternalTool, "lock", "acquire provisioning lock", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock held at %s)", ErrLocked, p.lock.Path())
	}
	defer func() {
		if unlockErr := p.lock.Unlock(); unlockErr != nil {
			log.Warn("failed to release provisioning lock", "error", unlockErr)
		}
	}()

	if err := p.store.EnsureDomainDir(domain); err != nil {
		return Wrap(ErrConfiguration, "prepare", "create bundle directory", err)
	}
	if !p.issuer.Installed() {
		if err := p.issuer.EnsureInstalled(ctx); err != nil {
			return Wrap(ErrInstallation, "install", "install acme client", err)
		}
	}

	credentials, rejected := UnwrapCredentials(p.environ(), CredentialPrefix)
	for _, name := range rejected {
		log.Warn("ignoring credential variable with invalid name", "name", CredentialPrefix+name)
	}

	log.Info("renewing certificate", "domain", domain, "provider", p.cfg.ACME.DNSProvider)
	request := acme.IssueRequest{
		Domain:        domain,
		Provider:      p.cfg.ACME.DNSProvider,
		Credentials:   credentials,
		KeyPath:       p.store.KeyPath(domain),
		ChainPath:     p.store.ChainPath(domain),
		ReloadCommand: p.cfg.TLS.ReloadCommand,
	}
	if err := p.issuer.Issue(ctx, request); err != nil {
		return Wrap(ErrIssuance, "renew", "renew certificate", err)
	}
	if err := p.store.SetLatest(domain); err != nil {
		return Wrap(ErrIssuance, "alias", "repoint stable alias", err)
	}
	result.Action = ActionRenewed
	log.Info("certificate renewed", "domain", domain)
	return nil
}

func (p *Provisioner) record(ctx context.Context, log *slog.Logger, rec Record) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Record(ctx, rec); err != nil {
		log.Warn("failed to journal provisioning run", "error", err)
	}
}
