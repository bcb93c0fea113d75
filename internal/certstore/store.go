package certstore

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Well-known file names inside a domain bundle directory.
const (
	KeyFileName   = "privkey.pem"
	ChainFileName = "fullchain.pem"

	latestName = "latest"
)

// Store exposes the certificate root layout.
type Store struct {
	root string
}

// New returns a store rooted at the given certificate directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the certificate root directory.
func (s *Store) Root() string {
	return s.root
}

// DomainDir returns the bundle directory for a domain.
func (s *Store) DomainDir(domain string) string {
	return filepath.Join(s.root, domain)
}

// KeyPath returns the private key path for a domain.
func (s *Store) KeyPath(domain string) string {
	return filepath.Join(s.DomainDir(domain), KeyFileName)
}

// ChainPath returns the full chain path for a domain.
func (s *Store) ChainPath(domain string) string {
	return filepath.Join(s.DomainDir(domain), ChainFileName)
}

// LatestDir returns the stable alias path.
func (s *Store) LatestDir() string {
	return filepath.Join(s.root, latestName)
}

// HasBundle reports whether a domain already has an issued bundle. Presence
// of fullchain.pem is the sole check; expiry is intentionally not consulted.
func (s *Store) HasBundle(domain string) bool {
	info, err := os.Stat(s.ChainPath(domain))
	return err == nil && info.Mode().IsRegular()
}

// HasLatestBundle reports whether the stable alias resolves to a directory
// containing a full chain. Used on the manual-certificate path.
func (s *Store) HasLatestBundle() bool {
	info, err := os.Stat(filepath.Join(s.LatestDir(), ChainFileName))
	return err == nil && info.Mode().IsRegular()
}

// EnsureDomainDir creates the bundle directory for a domain. Safe to call
// when the directory already exists.
func (s *Store) EnsureDomainDir(domain string) error {
	if err := validDomain(domain); err != nil {
		return err
	}
	if err := os.MkdirAll(s.DomainDir(domain), 0o755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	return nil
}

// SetLatest repoints the stable alias at the domain's bundle directory,
// replacing any prior target. The symlink is created under a temporary name
// and renamed over the alias so consumers never observe a dangling alias.
func (s *Store) SetLatest(domain string) error {
	if err := validDomain(domain); err != nil {
		return err
	}
	tmp := filepath.Join(s.root, ".latest.tmp")
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear stale alias: %w", err)
	}
	if err := os.Symlink(s.DomainDir(domain), tmp); err != nil {
		return fmt.Errorf("create alias symlink: %w", err)
	}
	if err := os.Rename(tmp, s.LatestDir()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace alias symlink: %w", err)
	}
	return nil
}

// LatestTarget returns the directory the stable alias currently points at.
func (s *Store) LatestTarget() (string, error) {
	target, err := os.Readlink(s.LatestDir())
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.root, target)
	}
	return filepath.Clean(target), nil
}

// ApplyOwnership recursively chowns the certificate root to the service
// account. Callers treat failures as advisory: the container entrypoint runs
// as root, but developer machines and tests usually do not.
func (s *Store) ApplyOwnership(userName, groupName string) error {
	if userName == "" {
		return errors.New("owner user not configured")
	}
	usr, err := user.Lookup(userName)
	if err != nil {
		return fmt.Errorf("lookup user %q: %w", userName, err)
	}
	uid, err := strconv.Atoi(usr.Uid)
	if err != nil {
		return fmt.Errorf("parse uid %q: %w", usr.Uid, err)
	}
	gid, err := strconv.Atoi(usr.Gid)
	if err != nil {
		return fmt.Errorf("parse gid %q: %w", usr.Gid, err)
	}
	if groupName != "" {
		grp, err := user.LookupGroup(groupName)
		if err != nil {
			return fmt.Errorf("lookup group %q: %w", groupName, err)
		}
		gid, err = strconv.Atoi(grp.Gid)
		if err != nil {
			return fmt.Errorf("parse gid %q: %w", grp.Gid, err)
		}
	}

	return filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			return os.Lchown(path, uid, gid)
		}
		return os.Chown(path, uid, gid)
	})
}

// BundleExpiry parses the leaf certificate of a domain's chain and returns
// its NotAfter timestamp. Display-only: the workflow never gates on expiry.
func (s *Store) BundleExpiry(domain string) (time.Time, error) {
	data, err := os.ReadFile(s.ChainPath(domain))
	if err != nil {
		return time.Time{}, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return time.Time{}, errors.New("no PEM block in chain")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse certificate: %w", err)
	}
	return cert.NotAfter, nil
}

func validDomain(domain string) error {
	if strings.TrimSpace(domain) == "" {
		return errors.New("domain is required")
	}
	if strings.ContainsAny(domain, "/\\") || domain == "." || domain == ".." {
		return fmt.Errorf("invalid domain %q", domain)
	}
	return nil
}
