// Package assets provides the Markdown skeletons used to compose agreements.
//
// # Loader Architecture
//
//	TemplateLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in templates compiled into the binary
//	    ├── FilesystemLoader  - templates from a directory on disk
//	    └── Resolver          - custom-first lookup with embedded fallback
//
// Resolver lets users override a single template while keeping the others.
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}.md
//
// # Security
//
// Template names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
