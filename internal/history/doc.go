// Package history persists the provisioning run journal in SQLite.
//
// Every run writes exactly one row, fatal or not, so operators can answer
// "when did this container last try to provision and what happened" without
// scraping logs. Journal failures are advisory; the provisioner logs and
// continues.
package history
