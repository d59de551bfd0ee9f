// Package services implements the business layer between the HTTP
// transport and the wizard core. It owns the platform collaborator
// client (upload, preview, missing-value handling, feature save,
// preprocessing, all opaque JSON endpoints) and the WizardService
// facade that gate-checks caller actions before they reach the
// collaborators and feeds confirmed responses back into the transition
// controller.
//
// Services follow the usual conventions here: interface-driven design
// for testability, context propagation on every call, dependency
// injection, and structured logging with slog.
package services
