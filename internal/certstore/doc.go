// Package certstore manages the on-disk certificate bundle layout.
//
// Each domain owns a directory under the certificate root containing
// privkey.pem and fullchain.pem. A "latest" symlink always points at the
// active domain's directory so the web server can reference a stable path.
// Bundle presence is judged solely by the existence of fullchain.pem; expiry
// is never inspected by the provisioning workflow (renewal is the cron job's
// responsibility).
package certstore
