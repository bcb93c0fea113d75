package provision

import (
	"regexp"
	"sort"
	"strings"
)

// CredentialPrefix is the namespace under which DNS-plugin credentials are
// supplied to the container, e.g. ACME_ENV_CF_Token becomes CF_Token.
const CredentialPrefix = "ACME_ENV_"

// bareNamePattern is the shape a credential variable must have once the
// prefix is stripped. Anything else never reaches the ACME client.
var bareNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// UnwrapCredentials scans an environment (os.Environ form) for variables
// under the given prefix and returns them keyed by bare name, plus the list
// of rejected bare names. The process environment is never mutated; the
// credentials travel to the ACME client explicitly.
func UnwrapCredentials(environ []string, prefix string) (map[string]string, []string) {
	credentials := make(map[string]string)
	var rejected []string

	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		bare := strings.TrimPrefix(name, prefix)
		if !bareNamePattern.MatchString(bare) {
			rejected = append(rejected, bare)
			continue
		}
		credentials[bare] = value
	}

	sort.Strings(rejected)
	return credentials, rejected
}
