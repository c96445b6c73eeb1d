// Package domain defines the core business types for the Samadhan grievance
// portal.
//
// Types in this package are pure value objects with no behavior beyond
// validation. They are the shared language between handlers, services, and
// repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants, enums and the error taxonomy belong here
package domain
