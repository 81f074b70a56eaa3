// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── settings/        # Key/value application settings
//	├── media/           # Media library catalogue
//	└── audit/           # Audit event log
//
// Users are managed by the auth package directly on the shared *gorm.DB.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./sitedocs.db")
//
//	settingsRepo := settings.NewRepository(db.DB)
//	mediaRepo := media.NewRepository(db.DB)
//
//	item, err := mediaRepo.GetMediaByID(42)
//	pdf, err := mediaRepo.FindOneMedia(entities.MediaQuery{
//		Slug: "wds-documentation-pdf", Kind: entities.MediaKindAttachment, MostRecent: true,
//	})
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
