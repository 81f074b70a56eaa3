package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/sitedocs/internal/audit"
	"github.com/mrlokans/sitedocs/internal/docs"
	"github.com/mrlokans/sitedocs/internal/entities"
	"github.com/mrlokans/sitedocs/internal/readonly"
)

const (
	videoMissing = "Video not found; upload a video to the media library with the slug <code>wds-documentation-video</code>."
	pdfMissing   = "PDF not found; upload a PDF to the media library with the slug <code>wds-documentation-pdf</code>."
)

func saveForm(id string) url.Values {
	return url.Values{
		"submit_video_selector":      {"Save"},
		"wds_documentation_video_id": {id},
	}
}

func TestIndex_RedirectsToDocumentation(t *testing.T) {
	s := setupServer(t, nil)

	w := s.get("/")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/documentation", w.Header().Get("Location"))
}

func TestDocumentationPage_Unconfigured(t *testing.T) {
	s := setupServer(t, nil)

	w := s.get("/documentation")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<a class="toolbar-item" href="/documentation">Site Documentation</a>`)
	assert.Contains(t, body, videoMissing)
	assert.Contains(t, body, pdfMissing)
	assert.NotContains(t, body, "<video")
	assert.Contains(t, body, `href="https://support.example.com"`)
	assert.Contains(t, body, "<h2>Administration</h2>")
	assert.Contains(t, body, `<span id="wds-video-name"></span>`)
}

func TestDocumentationPage_Configured(t *testing.T) {
	s := setupServer(t, nil)
	video := s.addMedia(t, "Intro", "intro", "video/mp4", "https://cdn.example.com/intro.mp4")
	s.addMedia(t, "Manual", docs.PDFSlug, "application/pdf", "https://cdn.example.com/manual.pdf")
	require.NoError(t, s.resolver.SetVideoSelection(video.ID))

	w := s.get("/documentation")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<source src="https://cdn.example.com/intro.mp4">`)
	assert.Contains(t, body, `<a href="https://cdn.example.com/manual.pdf">View PDF documentation</a>`)
	assert.Contains(t, body, `<span id="wds-video-name">Intro</span>`)
	assert.NotContains(t, body, videoMissing)
	assert.NotContains(t, body, pdfMissing)
}

func TestDocumentationPage_DeletedVideoFallsBack(t *testing.T) {
	s := setupServer(t, nil)
	video := s.addMedia(t, "Intro", "intro", "video/mp4", "https://cdn.example.com/intro.mp4")
	require.NoError(t, s.resolver.SetVideoSelection(video.ID))
	require.NoError(t, s.media.DeleteMedia(video.ID))

	w := s.get("/documentation")

	assert.Contains(t, w.Body.String(), videoMissing)
}

func TestDocumentationPage_SavedNotice(t *testing.T) {
	s := setupServer(t, nil)

	assert.Contains(t, s.get("/documentation?saved=1").Body.String(), "Documentation video saved.")
	assert.NotContains(t, s.get("/documentation").Body.String(), "Documentation video saved.")
}

func TestDocumentationWidget(t *testing.T) {
	s := setupServer(t, nil)
	s.addMedia(t, "Manual", docs.PDFSlug, "application/pdf", "https://cdn.example.com/manual.pdf")

	w := s.get("/documentation/widget")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, videoMissing)
	assert.Contains(t, body, "View PDF documentation")
	assert.NotContains(t, body, "<html")
	assert.NotContains(t, body, "Administration")
}

func TestSaveForm(t *testing.T) {
	t.Run("stores the selection and redirects", func(t *testing.T) {
		s := setupServer(t, nil)
		video := s.addMedia(t, "Intro", "intro", "video/mp4", "https://cdn.example.com/intro.mp4")

		w := s.postForm("/documentation", saveForm(jsonID(video.ID)))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/documentation?saved=1", w.Header().Get("Location"))
		assert.Equal(t, video.ID, s.resolver.VideoSelection())
		assert.Equal(t, "https://cdn.example.com/intro.mp4", s.resolver.ResolveVideoURL())

		events := s.auditEvents(t, entities.AuditEventSettings)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionVideoSelectionUpdate, events[0].Action)
	})

	t.Run("ignores posts without the submit button", func(t *testing.T) {
		s := setupServer(t, nil)
		require.NoError(t, s.resolver.SetVideoSelection(4))

		w := s.postForm("/documentation", url.Values{"wds_documentation_video_id": {"9"}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/documentation", w.Header().Get("Location"))
		assert.Equal(t, uint(4), s.resolver.VideoSelection())
		assert.Empty(t, s.auditEvents(t, entities.AuditEventSettings))
	})

	t.Run("ignores posts without the selection field", func(t *testing.T) {
		s := setupServer(t, nil)
		require.NoError(t, s.resolver.SetVideoSelection(4))

		w := s.postForm("/documentation", url.Values{"submit_video_selector": {"Save"}})

		assert.Equal(t, "/documentation", w.Header().Get("Location"))
		assert.Equal(t, uint(4), s.resolver.VideoSelection())
	})

	for _, raw := range []string{"-5", "abc", ""} {
		t.Run("coerces "+raw+" to unset", func(t *testing.T) {
			s := setupServer(t, nil)
			require.NoError(t, s.resolver.SetVideoSelection(4))

			w := s.postForm("/documentation", saveForm(raw))

			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, uint(0), s.resolver.VideoSelection())
		})
	}
}

func TestDocumentation_ChangesDisabled(t *testing.T) {
	s := setupServer(t, nil)
	require.NoError(t, s.settings.SetEnableChanges(false))

	t.Run("admin form is hidden", func(t *testing.T) {
		body := s.get("/documentation").Body.String()
		assert.NotContains(t, body, "Administration")
		assert.Contains(t, body, videoMissing)
	})

	t.Run("form posts are rejected", func(t *testing.T) {
		w := s.postForm("/documentation", saveForm("3"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, readonly.BlockedMessage, w.Body.String())
		assert.Equal(t, uint(0), s.resolver.VideoSelection())
	})

	t.Run("API writes are rejected", func(t *testing.T) {
		w := s.sendJSON(http.MethodPut, "/api/documentation/video", `{"video_id": 3}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), `"changes_enabled":false`)
	})

	t.Run("reads still work", func(t *testing.T) {
		w := s.get("/api/documentation")

		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, decodeJSON[DocumentationResponse](t, w).ChangesEnabled)
	})
}

func TestDocumentationAPI_Get(t *testing.T) {
	s := setupServer(t, nil)
	video := s.addMedia(t, "Intro", "intro", "video/mp4", "https://cdn.example.com/intro.mp4")
	s.addMedia(t, "Manual", docs.PDFSlug, "application/pdf", "https://cdn.example.com/manual.pdf")
	require.NoError(t, s.resolver.SetVideoSelection(video.ID))

	w := s.get("/api/documentation")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[DocumentationResponse](t, w)
	assert.Equal(t, "https://cdn.example.com/intro.mp4", resp.VideoURL)
	assert.Equal(t, "https://cdn.example.com/manual.pdf", resp.PDFURL)
	assert.Equal(t, video.ID, resp.VideoID)
	assert.True(t, resp.ChangesEnabled)
}

func TestDocumentationAPI_GetUnconfigured(t *testing.T) {
	s := setupServer(t, nil)

	w := s.get("/api/documentation")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"video_id":0,"changes_enabled":true}`, w.Body.String())
}

func TestDocumentationAPI_UpdateVideo(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		expected uint
	}{
		{"number", `{"video_id": 7}`, http.StatusOK, 7},
		{"numeric string", `{"video_id": "8"}`, http.StatusOK, 8},
		{"zero clears", `{"video_id": 0}`, http.StatusOK, 0},
		{"negative clears", `{"video_id": -3}`, http.StatusOK, 0},
		{"garbage clears", `{"video_id": "intro"}`, http.StatusOK, 0},
		{"missing field", `{}`, http.StatusBadRequest, 2},
		{"malformed body", `{"video_id":`, http.StatusBadRequest, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupServer(t, nil)
			require.NoError(t, s.resolver.SetVideoSelection(2))

			w := s.sendJSON(http.MethodPut, "/api/documentation/video", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.expected, s.resolver.VideoSelection())
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.expected, decodeJSON[DocumentationResponse](t, w).VideoID)
			}
		})
	}
}

func TestDocumentationAPI_UpdateVideoIsIdempotent(t *testing.T) {
	s := setupServer(t, nil)

	for range 2 {
		w := s.sendJSON(http.MethodPut, "/api/documentation/video", `{"video_id": 5}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, uint(5), s.resolver.VideoSelection())
}
