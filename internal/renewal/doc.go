// Package renewal maintains the periodic certificate renewal job.
//
// The provisioner rewrites one cron file on every run (overwrite, never
// append) so the schedule self-heals across container restarts, then makes
// sure the cron daemon is actually running. Renewal itself, including the
// expiry decision, belongs entirely to the scheduled job; the provisioning
// workflow never inspects certificate expiry.
package renewal
