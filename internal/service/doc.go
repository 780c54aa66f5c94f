// Package service provides the service registry for grafy's tool providers.
//
// The registry keeps a catalog of providers and routes tool executions to
// them by the service prefix of the tool ID.
//
// Discovery Algorithm:
//   - Keyword matching in name/description
//   - Capability matching
//   - Category bonus for exact matches
//   - Score-based ranking, ties broken by service ID
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(calculusProvider)
//	services := registry.Discover("gradient of a surface", 5)
//	result, err := registry.Execute(ctx, "calculus.derivatives", params, appCtx)
package service
