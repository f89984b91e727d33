// Package entities defines the legal-entity data shared across leimap: registry
// records, lightweight references, ranked name matches, the company details
// view and saved target-to-match pairings.
//
// Attributes the registry does not supply are normalized to Unknown at
// construction time so presentation code never has to nil-check.
package entities
