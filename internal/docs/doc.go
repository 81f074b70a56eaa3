// Package docs resolves the documentation assets shown on the dashboard.
//
// Two assets are resolved on every request, never cached:
//
//   - the video, referenced by the media ID stored under
//     entities.SettingKeyVideoSelection
//   - the PDF, found by convention as the newest attachment whose slug is PDFSlug
//
// Both results pass through an optional URLFilter so callers can substitute
// URLs (for example from configuration) without touching storage.
//
// The resolver performs no authorization. Callers must check the
// manage_options capability before calling SetVideoSelection.
package docs
