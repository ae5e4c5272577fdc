// Package app composes the blog service.
//
// # Package Structure
//
//	internal/app/
//	├── application.go   # Application struct and wiring
//	├── domain/post/     # Post entity and validation
//	├── storage/         # PostStore port and storage errors
//	│   ├── memory/      # In-memory implementation for tests and local runs
//	│   ├── sqlstore/    # SQLite and PostgreSQL implementation
//	│   └── storagetest/ # Contract suite shared by implementations
//	├── services/posts/  # Post use cases
//	├── httpapi/         # HTTP handlers and routing
//	├── metrics/         # Prometheus collectors
//	└── runtime/         # Process lifecycle for cmd/blogd
//
// # Dependency Direction
//
//	cmd/blogd/
//	      │
//	      ▼
//	internal/app/runtime
//	      │
//	      ├──► internal/app/httpapi ──► internal/app (Application)
//	      │                                   │
//	      │                                   ▼
//	      │                          services/posts ──► storage (port)
//	      │                                                  ▲
//	      └──► internal/platform/{database,schema} ──► storage/sqlstore
package app
