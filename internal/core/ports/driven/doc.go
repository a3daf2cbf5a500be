// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TokenStore: OAuth token persistence, one token per owner
//   - ContactStore, ProjectStore, InvoiceStore: Local mirror persistence
//   - LinkStore: Principal to contact links
//   - Cache: Short-lived namespaced values (API responses, staleness markers)
//   - OAuthProvider: Authorization-code and refresh-token grants
//   - AccountingAPI: Paginated, cached access to the remote accounting API
//   - ConfigStore: Application settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
